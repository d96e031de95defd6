package books

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/booknest/booknest/internal/auth"
	"github.com/booknest/booknest/internal/notifier"
	"github.com/booknest/booknest/pkg/logger"
	"github.com/booknest/booknest/pkg/metrics"
	"github.com/booknest/booknest/pkg/models"
	"github.com/booknest/booknest/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handler handles catalog operations.
type Handler struct {
	store  *Store
	events *notifier.Hub
	log    *logger.Logger
}

func NewHandler(store *Store, events *notifier.Hub) *Handler {
	return &Handler{
		store:  store,
		events: events,
		log:    logger.GetLogger().WithContext("component", "books"),
	}
}

// List returns a page of the catalog. Non-numeric page/limit values fall back
// to defaults; numeric values out of range are rejected.
func (h *Handler) List(c *gin.Context) {
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

	result, err := h.store.List(models.ListBooksParams{
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Search:    c.Query("search"),
	})
	if err != nil {
		h.log.Error("list_books_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	book, err := h.store.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		h.log.Error("get_book_failed", "error", err.Error(), "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *Handler) Create(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if req.Author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Author is required"})
		return
	}
	if req.ISBN != "" && !utils.ValidISBN(req.ISBN) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ISBN: must be 10 or 13 digits"})
		return
	}
	if req.PageCount != nil && *req.PageCount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page count"})
		return
	}
	if req.PublicationDate != "" && !utils.ValidDate(req.PublicationDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid publication date: expected YYYY-MM-DD"})
		return
	}
	if len(req.Genres) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one genre is required"})
		return
	}

	existing, err := h.store.FindDuplicate(req.Title, req.Author)
	if err != nil {
		h.log.Error("duplicate_check_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "A book with this title and author already exists",
			"existing_book": gin.H{
				"id":     existing.ID,
				"title":  existing.Title,
				"author": existing.Author,
			},
		})
		return
	}

	userID := auth.UserID(c)
	book, err := h.store.Create(req, &userID)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid genre ID"})
			return
		}
		h.log.Error("create_book_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
		return
	}

	metrics.IncrementBooksCreated()
	h.events.Publish(notifier.EventBookCreated, gin.H{"book_id": book.ID, "title": book.Title})

	c.JSON(http.StatusCreated, book)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var req models.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if req.Author != nil && strings.TrimSpace(*req.Author) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Author is required"})
		return
	}
	if req.ISBN != nil && *req.ISBN != "" && !utils.ValidISBN(*req.ISBN) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ISBN: must be 10 or 13 digits"})
		return
	}
	if req.PageCount != nil && *req.PageCount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page count"})
		return
	}
	if req.PublicationDate != nil && *req.PublicationDate != "" && !utils.ValidDate(*req.PublicationDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid publication date: expected YYYY-MM-DD"})
		return
	}

	book, err := h.store.Update(id, req)
	if err != nil {
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid genre ID"})
			return
		}
		h.log.Error("update_book_failed", "error", err.Error(), "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book"})
		return
	}

	h.events.Publish(notifier.EventBookUpdated, gin.H{"book_id": book.ID})

	c.JSON(http.StatusOK, book)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		h.log.Error("delete_book_failed", "error", err.Error(), "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
		return
	}

	h.events.Publish(notifier.EventBookDeleted, gin.H{"book_id": id})

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
