package models

import "time"

type ReadingList struct {
	ID          int64             `json:"id" db:"id"`
	UserID      int64             `json:"user_id" db:"user_id"`
	Name        string            `json:"name" db:"name"`
	Description string            `json:"description,omitempty" db:"description"`
	IsPublic    bool              `json:"is_public" db:"is_public"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
	Books       []ReadingListBook `json:"books,omitempty"`
}

type ReadingListBook struct {
	ReadingListID int64     `json:"reading_list_id" db:"reading_list_id"`
	BookID        int64     `json:"book_id" db:"book_id"`
	Position      int       `json:"position" db:"position"`
	Notes         string    `json:"notes,omitempty" db:"notes"`
	AddedAt       time.Time `json:"added_at" db:"added_at"`
	Book          *Book     `json:"book,omitempty"`
}

type ReadingListRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

type AddListBookRequest struct {
	BookID   int64  `json:"book_id" binding:"required"`
	Position *int   `json:"position"`
	Notes    string `json:"notes"`
}
