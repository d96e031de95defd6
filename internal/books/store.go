package books

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/booknest/booknest/pkg/models"
)

var ErrNotFound = errors.New("book not found")

// sortColumns is the allow-list for catalog sorting. Anything else falls back
// to the default ordering instead of erroring; callers depend on that.
var sortColumns = map[string]string{
	"title":            "title",
	"author":           "author",
	"publication_year": "publication_year",
	"page_count":       "page_count",
	"created_at":       "created_at",
}

const (
	defaultSortColumn = "created_at"
	defaultSortOrder  = "DESC"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const bookColumns = `id, title, author, publication_year, description, isbn, page_count,
       language, publisher, cover_image_url, publication_date, user_id, created_at, updated_at`

func scanBook(row interface{ Scan(...interface{}) error }) (*models.Book, error) {
	var b models.Book
	var year, pages, owner sql.NullInt64

	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&year,
		&b.Description,
		&b.ISBN,
		&pages,
		&b.Language,
		&b.Publisher,
		&b.CoverImageURL,
		&b.PublicationDate,
		&owner,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		v := int(year.Int64)
		b.PublicationYear = &v
	}
	if pages.Valid {
		v := int(pages.Int64)
		b.PageCount = &v
	}
	if owner.Valid {
		v := owner.Int64
		b.UserID = &v
	}
	return &b, nil
}

// searchClause matches a case-insensitive substring across the searchable
// columns, including genre names through a correlated EXISTS check.
const searchClause = ` AND (
        title LIKE ? OR
        author LIKE ? OR
        CAST(publication_year AS TEXT) LIKE ? OR
        description LIKE ? OR
        isbn LIKE ? OR
        language LIKE ? OR
        publisher LIKE ? OR
        EXISTS (
            SELECT 1 FROM book_genres bg
            JOIN genres g ON g.id = bg.genre_id
            WHERE bg.book_id = books.id AND g.name LIKE ?
        )
    )`

func searchArgs(search string) []interface{} {
	pattern := "%" + search + "%"
	args := make([]interface{}, 8)
	for i := range args {
		args[i] = pattern
	}
	return args
}

// List returns one page of the catalog with the total row count across all
// pages. Page is 1-based; the handler has already validated page and limit.
func (s *Store) List(params models.ListBooksParams) (*models.PaginatedBooksResponse, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if params.Search != "" {
		where += searchClause
		args = append(args, searchArgs(params.Search)...)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = defaultSortColumn
	}
	order := defaultSortOrder
	switch strings.ToLower(params.SortOrder) {
	case "asc":
		order = "ASC"
	case "desc":
		order = "DESC"
	}

	query := `SELECT ` + bookColumns + ` FROM books` + where +
		fmt.Sprintf(` ORDER BY %s %s LIMIT ? OFFSET ?`, column, order)
	args = append(args, params.Limit, (params.Page-1)*params.Limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		genres, err := s.genresFor(result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Genres = genres
	}

	totalPages := (total + params.Limit - 1) / params.Limit

	return &models.PaginatedBooksResponse{
		Books:      result,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *Store) GetByID(id int64) (*models.Book, error) {
	row := s.db.QueryRow(`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b.Genres, err = s.genresFor(b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// All returns the full catalog with genres, in insertion order. Used as the
// candidate pool for recommendations.
func (s *Store) All() ([]models.Book, error) {
	rows, err := s.db.Query(`SELECT ` + bookColumns + ` FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		genres, err := s.genresFor(result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Genres = genres
	}
	return result, nil
}

// FindDuplicate looks up an existing book with the exact same title and
// author. Returns nil when none exists.
func (s *Store) FindDuplicate(title, author string) (*models.Book, error) {
	row := s.db.QueryRow(`SELECT `+bookColumns+` FROM books WHERE title = ? AND author = ?`, title, author)
	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Create inserts the book and its genre links in a single transaction so a
// book can never exist without at least one genre.
func (s *Store) Create(req models.CreateBookRequest, userID *int64) (*models.Book, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if userID != nil {
		var ownerExists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, *userID).Scan(&ownerExists); err != nil {
			return nil, err
		}
		// A token for a deleted account still creates the book, just unowned.
		// Any FK failure past this point can only come from a genre id.
		if !ownerExists {
			userID = nil
		}
	}

	res, err := tx.Exec(`INSERT INTO books
        (title, author, publication_year, description, isbn, page_count, language,
         publisher, cover_image_url, publication_date, user_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Title, req.Author, req.PublicationYear, req.Description, req.ISBN,
		req.PageCount, req.Language, req.Publisher, req.CoverImageURL,
		req.PublicationDate, userID)
	if err != nil {
		return nil, err
	}

	bookID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, genreID := range req.Genres {
		if _, err := tx.Exec(`INSERT INTO book_genres (book_id, genre_id) VALUES (?, ?)`, bookID, genreID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.GetByID(bookID)
}

// Update applies the non-nil fields and, when Genres is non-empty, replaces
// the genre links. Both happen in one transaction.
func (s *Store) Update(id int64, req models.UpdateBookRequest) (*models.Book, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if req.Title != nil {
		addSet("title", *req.Title)
	}
	if req.Author != nil {
		addSet("author", *req.Author)
	}
	if req.PublicationYear != nil {
		addSet("publication_year", *req.PublicationYear)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.ISBN != nil {
		addSet("isbn", *req.ISBN)
	}
	if req.PageCount != nil {
		addSet("page_count", *req.PageCount)
	}
	if req.Language != nil {
		addSet("language", *req.Language)
	}
	if req.Publisher != nil {
		addSet("publisher", *req.Publisher)
	}
	if req.CoverImageURL != nil {
		addSet("cover_image_url", *req.CoverImageURL)
	}
	if req.PublicationDate != nil {
		addSet("publication_date", *req.PublicationDate)
	}

	query := `UPDATE books SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)
	if _, err := tx.Exec(query, args...); err != nil {
		return nil, err
	}

	if len(req.Genres) > 0 {
		if _, err := tx.Exec(`DELETE FROM book_genres WHERE book_id = ?`, id); err != nil {
			return nil, err
		}
		for _, genreID := range req.Genres {
			if _, err := tx.Exec(`INSERT INTO book_genres (book_id, genre_id) VALUES (?, ?)`, id, genreID); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

func (s *Store) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) genresFor(bookID int64) ([]models.Genre, error) {
	rows, err := s.db.Query(`SELECT g.id, g.name, g.description
        FROM genres g
        JOIN book_genres bg ON bg.genre_id = g.id
        WHERE bg.book_id = ?
        ORDER BY g.id`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
