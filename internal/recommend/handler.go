package recommend

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/booknest/booknest/internal/auth"
	"github.com/booknest/booknest/internal/books"
	"github.com/booknest/booknest/pkg/logger"
	"github.com/booknest/booknest/pkg/metrics"
	"github.com/booknest/booknest/pkg/models"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	db     *sql.DB
	books  *books.Store
	google *GoogleBooksClient
	taste  *TasteDiveClient
	log    *logger.Logger
}

func NewHandler(db *sql.DB, store *books.Store, google *GoogleBooksClient, taste *TasteDiveClient) *Handler {
	return &Handler{
		db:     db,
		books:  store,
		google: google,
		taste:  taste,
		log:    logger.GetLogger().WithContext("component", "recommend"),
	}
}

// ForUser recommends catalog books based on everything the user has marked as
// read. An empty read history is a 200 with a message, not an error.
func (h *Handler) ForUser(c *gin.Context) {
	userID := auth.UserID(c)

	input, ratings, err := h.readBooks(userID)
	if err != nil {
		h.log.Error("load_read_books_failed", "error", err.Error(), "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reading history"})
		return
	}

	if len(input) == 0 {
		c.JSON(http.StatusOK, models.RecommendationResponse{
			Recommendations: []models.Recommendation{},
			Message:         "You haven't marked any books as read yet. Add some books to get recommendations!",
		})
		return
	}

	catalog, err := h.books.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}

	stats := &models.RecommendationStats{
		BookCount:  len(input),
		TopGenres:  TopGenres(input),
		TopAuthors: TopAuthors(input),
	}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		stats.AverageRating = float64(sum) / float64(len(ratings))
	}

	metrics.IncrementRecommendationsServed()
	c.JSON(http.StatusOK, models.RecommendationResponse{
		Recommendations: Recommend(input, catalog),
		Stats:           stats,
	})
}

// ForReadingList recommends catalog books similar to the list's contents.
func (h *Handler) ForReadingList(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading list ID"})
		return
	}

	var listName string
	err = h.db.QueryRow(`SELECT name FROM reading_lists WHERE id = ?`, id).Scan(&listName)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reading list not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	input, err := h.listBooks(id)
	if err != nil {
		h.log.Error("load_list_books_failed", "error", err.Error(), "list_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reading list"})
		return
	}

	if len(input) == 0 {
		c.JSON(http.StatusOK, models.RecommendationResponse{
			Recommendations: []models.Recommendation{},
			Message:         "No books in this reading list yet. Add some books to get recommendations!",
		})
		return
	}

	catalog, err := h.books.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}

	metrics.IncrementRecommendationsServed()
	c.JSON(http.StatusOK, models.RecommendationResponse{
		Recommendations: Recommend(input, catalog),
		Stats: &models.RecommendationStats{
			BookCount:  len(input),
			TopGenres:  TopGenres(input),
			TopAuthors: TopAuthors(input),
			ListName:   listName,
		},
	})
}

// readBooks resolves the user's read associations to full books and collects
// the ratings that were set.
func (h *Handler) readBooks(userID int64) ([]models.Book, []int, error) {
	rows, err := h.db.Query(`SELECT book_id, rating FROM user_books
        WHERE user_id = ? AND read_status = 'read' ORDER BY book_id`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	ids := []int64{}
	ratings := []int{}
	for rows.Next() {
		var id int64
		var rating sql.NullInt64
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		if rating.Valid {
			ratings = append(ratings, int(rating.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	result, err := h.resolve(ids)
	return result, ratings, err
}

func (h *Handler) listBooks(listID int64) ([]models.Book, error) {
	rows, err := h.db.Query(`SELECT book_id FROM reading_list_books
        WHERE reading_list_id = ? ORDER BY position, added_at`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return h.resolve(ids)
}

func (h *Handler) resolve(ids []int64) ([]models.Book, error) {
	result := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		b, err := h.books.GetByID(id)
		if err != nil {
			if err == books.ErrNotFound {
				continue
			}
			return nil, err
		}
		result = append(result, *b)
	}
	return result, nil
}
