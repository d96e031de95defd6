package models

import "time"

type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	PublicationYear *int      `json:"publication_year" db:"publication_year"`
	Description     string    `json:"description,omitempty" db:"description"`
	ISBN            string    `json:"isbn,omitempty" db:"isbn"`
	PageCount       *int      `json:"page_count" db:"page_count"`
	Language        string    `json:"language,omitempty" db:"language"`
	Publisher       string    `json:"publisher,omitempty" db:"publisher"`
	CoverImageURL   string    `json:"cover_image_url,omitempty" db:"cover_image_url"`
	PublicationDate string    `json:"publication_date,omitempty" db:"publication_date"`
	UserID          *int64    `json:"user_id,omitempty" db:"user_id"`
	Genres          []Genre   `json:"genres"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type CreateBookRequest struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author" binding:"required"`
	PublicationYear *int    `json:"publication_year"`
	Description     string  `json:"description"`
	ISBN            string  `json:"isbn"`
	PageCount       *int    `json:"page_count"`
	Language        string  `json:"language"`
	Publisher       string  `json:"publisher"`
	CoverImageURL   string  `json:"cover_image_url"`
	PublicationDate string  `json:"publication_date"`
	Genres          []int64 `json:"genres"`
}

type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	PublicationYear *int    `json:"publication_year"`
	Description     *string `json:"description"`
	ISBN            *string `json:"isbn"`
	PageCount       *int    `json:"page_count"`
	Language        *string `json:"language"`
	Publisher       *string `json:"publisher"`
	CoverImageURL   *string `json:"cover_image_url"`
	PublicationDate *string `json:"publication_date"`
	Genres          []int64 `json:"genres"`
}

// ListBooksParams carries the validated query parameters for paginated
// catalog listings. SortBy is checked against an allow-list in the store;
// unknown columns silently fall back to the default ordering.
type ListBooksParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
}

type PaginatedBooksResponse struct {
	Books      []Book `json:"books"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// ScrapedBook is the best-effort metadata recovered from an external page.
type ScrapedBook struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	Description     string `json:"description,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	CoverImageURL   string `json:"cover_image_url,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
}
