package models

type Genre struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

type GenreRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
