package userbooks

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/booknest/booknest/internal/auth"
	"github.com/booknest/booknest/internal/notifier"
	"github.com/booknest/booknest/pkg/logger"
	"github.com/booknest/booknest/pkg/models"
	"github.com/gin-gonic/gin"
)

// readSortColumns is the allow-list for the read-books listing; it is
// narrower than the catalog one. Unknown values fall back to the default.
var readSortColumns = map[string]string{
	"title":      "b.title",
	"author":     "b.author",
	"rating":     "ub.rating",
	"updated_at": "ub.updated_at",
}

type Handler struct {
	db     *sql.DB
	events *notifier.Hub
	log    *logger.Logger
}

func NewHandler(db *sql.DB, events *notifier.Hub) *Handler {
	return &Handler{
		db:     db,
		events: events,
		log:    logger.GetLogger().WithContext("component", "userbooks"),
	}
}

func (h *Handler) userExists(userID int64) (bool, error) {
	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, userID).Scan(&exists)
	return exists, err
}

func (h *Handler) bookExists(bookID int64) (bool, error) {
	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE id = ?)`, bookID).Scan(&exists)
	return exists, err
}

// List returns all of the user's associations with their books.
func (h *Handler) List(c *gin.Context) {
	userID := auth.UserID(c)

	rows, err := h.db.Query(`
        SELECT ub.user_id, ub.book_id, ub.read_status, ub.rating, ub.comments,
               ub.created_at, ub.updated_at,
               b.id, b.title, b.author, b.cover_image_url
        FROM user_books ub
        JOIN books b ON b.id = ub.book_id
        WHERE ub.user_id = ?
        ORDER BY ub.updated_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	result := []models.UserBook{}
	for rows.Next() {
		ub, err := scanAssociation(rows)
		if err != nil {
			h.log.Error("scan_association_failed", "error", err.Error())
			continue
		}
		result = append(result, *ub)
	}

	c.JSON(http.StatusOK, gin.H{"user_books": result})
}

// ListRead returns the user's read books, paginated, searchable and sortable.
func (h *Handler) ListRead(c *gin.Context) {
	userID := auth.UserID(c)

	page := 1
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = v
		}
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page must be 1 or greater"})
		return
	}
	if limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Limit must be between 1 and 100"})
		return
	}

	where := ` WHERE ub.user_id = ? AND ub.read_status = 'read'`
	args := []interface{}{userID}
	if search := c.Query("search"); search != "" {
		where += ` AND (b.title LIKE ? OR b.author LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM user_books ub JOIN books b ON b.id = ub.book_id` + where
	if err := h.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	column, ok := readSortColumns[c.Query("sortBy")]
	if !ok {
		column = "ub.updated_at"
	}
	order := "DESC"
	if strings.EqualFold(c.Query("sortOrder"), "asc") {
		order = "ASC"
	}

	query := `
        SELECT ub.user_id, ub.book_id, ub.read_status, ub.rating, ub.comments,
               ub.created_at, ub.updated_at,
               b.id, b.title, b.author, b.cover_image_url
        FROM user_books ub
        JOIN books b ON b.id = ub.book_id` + where +
		` ORDER BY ` + column + ` ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := h.db.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	result := []models.UserBook{}
	for rows.Next() {
		ub, err := scanAssociation(rows)
		if err != nil {
			h.log.Error("scan_association_failed", "error", err.Error())
			continue
		}
		result = append(result, *ub)
	}

	c.JSON(http.StatusOK, models.PaginatedUserBooksResponse{
		Books:      result,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	})
}

func (h *Handler) Get(c *gin.Context) {
	userID := auth.UserID(c)
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	row := h.db.QueryRow(`
        SELECT ub.user_id, ub.book_id, ub.read_status, ub.rating, ub.comments,
               ub.created_at, ub.updated_at,
               b.id, b.title, b.author, b.cover_image_url
        FROM user_books ub
        JOIN books b ON b.id = ub.book_id
        WHERE ub.user_id = ? AND ub.book_id = ?`, userID, bookID)

	ub, err := scanAssociation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Association not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, ub)
}

// Upsert creates or updates the association. Omitted fields keep their stored
// values (COALESCE), so a second call supplying only the rating leaves
// read_status and comments untouched.
func (h *Handler) Upsert(c *gin.Context) {
	userID := auth.UserID(c)

	var req models.UpsertUserBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.BookID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}
	if req.ReadStatus != nil && !models.ValidReadStatus(*req.ReadStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid read status: must be one of unread, reading, read"})
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating: must be between 1 and 5"})
		return
	}

	if exists, err := h.userExists(userID); err != nil || !exists {
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if exists, err := h.bookExists(req.BookID); err != nil || !exists {
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	query := `INSERT INTO user_books (user_id, book_id, read_status, rating, comments)
              VALUES (?, ?, COALESCE(?, 'unread'), ?, COALESCE(?, ''))
              ON CONFLICT(user_id, book_id) DO UPDATE SET
                  read_status = COALESCE(?, read_status),
                  rating = COALESCE(?, rating),
                  comments = COALESCE(?, comments),
                  updated_at = CURRENT_TIMESTAMP`

	_, err := h.db.Exec(query,
		userID, req.BookID, req.ReadStatus, req.Rating, req.Comments,
		req.ReadStatus, req.Rating, req.Comments)
	if err != nil {
		h.log.Error("upsert_association_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save association"})
		return
	}

	h.events.Publish(notifier.EventAssociationUpdated, gin.H{"user_id": userID, "book_id": req.BookID})

	c.JSON(http.StatusOK, gin.H{"message": "Association saved successfully"})
}

// Update modifies an existing association; 404 when it does not exist.
func (h *Handler) Update(c *gin.Context) {
	userID := auth.UserID(c)
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var req models.UpsertUserBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ReadStatus != nil && !models.ValidReadStatus(*req.ReadStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid read status: must be one of unread, reading, read"})
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating: must be between 1 and 5"})
		return
	}

	var exists bool
	if err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM user_books WHERE user_id = ? AND book_id = ?)`,
		userID, bookID).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Association not found"})
		return
	}

	_, err = h.db.Exec(`UPDATE user_books SET
            read_status = COALESCE(?, read_status),
            rating = COALESCE(?, rating),
            comments = COALESCE(?, comments),
            updated_at = CURRENT_TIMESTAMP
        WHERE user_id = ? AND book_id = ?`,
		req.ReadStatus, req.Rating, req.Comments, userID, bookID)
	if err != nil {
		h.log.Error("update_association_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update association"})
		return
	}

	h.events.Publish(notifier.EventAssociationUpdated, gin.H{"user_id": userID, "book_id": bookID})

	c.JSON(http.StatusOK, gin.H{"message": "Association updated successfully"})
}

func (h *Handler) Delete(c *gin.Context) {
	userID := auth.UserID(c)
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	res, err := h.db.Exec(`DELETE FROM user_books WHERE user_id = ? AND book_id = ?`, userID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete association"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Association not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Association deleted successfully"})
}

// scanAssociation reads an association row joined with its book summary.
func scanAssociation(row interface{ Scan(...interface{}) error }) (*models.UserBook, error) {
	var ub models.UserBook
	var rating sql.NullInt64
	var book models.Book

	err := row.Scan(
		&ub.UserID,
		&ub.BookID,
		&ub.ReadStatus,
		&rating,
		&ub.Comments,
		&ub.CreatedAt,
		&ub.UpdatedAt,
		&book.ID,
		&book.Title,
		&book.Author,
		&book.CoverImageURL,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		v := int(rating.Int64)
		ub.Rating = &v
	}
	ub.Book = &book
	return &ub, nil
}
