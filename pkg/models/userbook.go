package models

import "time"

// Read status values for a user-book association.
const (
	StatusUnread  = "unread"
	StatusReading = "reading"
	StatusRead    = "read"
)

func ValidReadStatus(s string) bool {
	return s == StatusUnread || s == StatusReading || s == StatusRead
}

type UserBook struct {
	UserID     int64     `json:"user_id" db:"user_id"`
	BookID     int64     `json:"book_id" db:"book_id"`
	ReadStatus string    `json:"read_status" db:"read_status"`
	Rating     *int      `json:"rating" db:"rating"`
	Comments   string    `json:"comments,omitempty" db:"comments"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	Book       *Book     `json:"book,omitempty"`
}

// UpsertUserBookRequest uses pointers so that omitted fields keep their
// stored values (COALESCE semantics in the store).
type UpsertUserBookRequest struct {
	BookID     int64   `json:"book_id"`
	ReadStatus *string `json:"read_status"`
	Rating     *int    `json:"rating"`
	Comments   *string `json:"comments"`
}

type PaginatedUserBooksResponse struct {
	Books      []UserBook `json:"books"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}
