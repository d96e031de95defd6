package readinglists

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

type Handler struct {
	db     *sql.DB
	events *notifier.Hub
	log    *logger.Logger
}

func NewHandler(db *sql.DB, events *notifier.Hub) *Handler {
	return &Handler{
		db:     db,
		events: events,
		log:    logger.GetLogger().WithContext("component", "readinglists"),
	}
}

func (h *Handler) getList(id int64) (*models.ReadingList, error) {
	var list models.ReadingList
	err := h.db.QueryRow(`SELECT id, user_id, name, description, is_public, created_at, updated_at
        FROM reading_lists WHERE id = ?`, id).
		Scan(&list.ID, &list.UserID, &list.Name, &list.Description, &list.IsPublic,
			&list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// List returns the user's own reading lists.
func (h *Handler) List(c *gin.Context) {
	userID := auth.UserID(c)

	rows, err := h.db.Query(`SELECT id, user_id, name, description, is_public, created_at, updated_at
        FROM reading_lists WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	lists := []models.ReadingList{}
	for rows.Next() {
		var list models.ReadingList
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &list.Description,
			&list.IsPublic, &list.CreatedAt, &list.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		lists = append(lists, list)
	}

	c.JSON(http.StatusOK, gin.H{"reading_lists": lists})
}

// GetByID returns a list and its books. Private lists are visible to their
// owner only.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading list ID"})
		return
	}

	list, err := h.getList(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reading list not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !list.IsPublic && list.UserID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this reading list"})
		return
	}

	books, err := h.listBooks(id)
	if err != nil {
		h.log.Error("list_books_failed", "error", err.Error(), "list_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	list.Books = books

	c.JSON(http.StatusOK, list)
}

func (h *Handler) Create(c *gin.Context) {
	userID := auth.UserID(c)

	var req models.ReadingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reading list name is required"})
		return
	}

	isPublic := false
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	res, err := h.db.Exec(`INSERT INTO reading_lists (user_id, name, description, is_public) VALUES (?, ?, ?, ?)`,
		userID, name, description, isPublic)
	if err != nil {
		h.log.Error("create_list_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reading list"})
		return
	}

	id, _ := res.LastInsertId()
	list, err := h.getList(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, list)
}

// requireOwnedList loads the list and enforces ownership, writing the error
// response itself. Returns nil when the caller should stop.
func (h *Handler) requireOwnedList(c *gin.Context, id int64) *models.ReadingList {
	list, err := h.getList(id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reading list not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil
	}
	if list.UserID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this reading list"})
		return nil
	}
	return list
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading list ID"})
		return
	}

	if h.requireOwnedList(c, id) == nil {
		return
	}

	var req models.ReadingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reading list name is required"})
		return
	}

	// Omitted fields keep their stored values.
	sets := []string{"name = ?", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{name}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.IsPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, *req.IsPublic)
	}
	args = append(args, id)

	if _, err := h.db.Exec(`UPDATE reading_lists SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		h.log.Error("update_list_failed", "error", err.Error(), "list_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reading list"})
		return
	}

	list, err := h.getList(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	h.events.Publish(notifier.EventListUpdated, gin.H{"reading_list_id": id})

	c.JSON(http.StatusOK, list)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading list ID"})
		return
	}

	if h.requireOwnedList(c, id) == nil {
		return
	}

	if _, err := h.db.Exec(`DELETE FROM reading_lists WHERE id = ?`, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reading list"})
		return
	}

	h.events.Publish(notifier.EventListUpdated, gin.H{"reading_list_id": id})

	c.JSON(http.StatusOK, gin.H{"message": "Reading list deleted successfully"})
}

// AddBook appends a book to the list. Position defaults to the end.
func (h *Handler) AddBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading list ID"})
		return
	}

	if h.requireOwnedList(c, id) == nil {
		return
	}

	var req models.AddListBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var bookExists bool
	if err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE id = ?)`, req.BookID).Scan(&bookExists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !bookExists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		_ = h.db.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM reading_list_books WHERE reading_list_id = ?`, id).
			Scan(&position)
	}

	_, err = h.db.Exec(`INSERT INTO reading_list_books (reading_list_id, book_id, position, notes) VALUES (?, ?, ?, ?)`,
		id, req.BookID, position, req.Notes)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(http.StatusConflict, gin.H{"error": "Book is already in this reading list"})
			return
		}
		h.log.Error("add_list_book_failed", "error", err.Error(), "list_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add book to reading list"})
		return
	}

	h.events.Publish(notifier.EventListUpdated, gin.H{"reading_list_id": id, "book_id": req.BookID})

	c.JSON(http.StatusCreated, gin.H{"message": "Book added to reading list"})
}

// RemoveBook deletes a membership row. The book id comes from the book_id
// query parameter.
func (h *Handler) RemoveBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reading list ID"})
		return
	}

	if h.requireOwnedList(c, id) == nil {
		return
	}

	bookID, err := strconv.ParseInt(c.Query("book_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	res, err := h.db.Exec(`DELETE FROM reading_list_books WHERE reading_list_id = ? AND book_id = ?`, id, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove book from reading list"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found in this reading list"})
		return
	}

	h.events.Publish(notifier.EventListUpdated, gin.H{"reading_list_id": id, "book_id": bookID})

	c.JSON(http.StatusOK, gin.H{"message": "Book removed from reading list"})
}

func (h *Handler) listBooks(listID int64) ([]models.ReadingListBook, error) {
	rows, err := h.db.Query(`
        SELECT rlb.reading_list_id, rlb.book_id, rlb.position, rlb.notes, rlb.added_at,
               b.id, b.title, b.author, b.cover_image_url
        FROM reading_list_books rlb
        JOIN books b ON b.id = rlb.book_id
        WHERE rlb.reading_list_id = ?
        ORDER BY rlb.position, rlb.added_at`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []models.ReadingListBook{}
	for rows.Next() {
		var entry models.ReadingListBook
		var book models.Book
		if err := rows.Scan(&entry.ReadingListID, &entry.BookID, &entry.Position, &entry.Notes,
			&entry.AddedAt, &book.ID, &book.Title, &book.Author, &book.CoverImageURL); err != nil {
			return nil, err
		}
		entry.Book = &book
		books = append(books, entry)
	}
	return books, rows.Err()
}
