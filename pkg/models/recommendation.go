package models

// Recommendation is the common shape produced by the internal engine and both
// external adapters.
type Recommendation struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Cover  string `json:"cover,omitempty"`
	Source string `json:"source,omitempty"`
}

// RecommendationStats summarizes the input set the recommendations were
// derived from.
type RecommendationStats struct {
	BookCount     int      `json:"book_count"`
	AverageRating float64  `json:"average_rating,omitempty"`
	TopGenres     []string `json:"top_genres"`
	TopAuthors    []string `json:"top_authors"`
	ListName      string   `json:"list_name,omitempty"`
}

type RecommendationResponse struct {
	Recommendations []Recommendation     `json:"recommendations"`
	Stats           *RecommendationStats `json:"stats,omitempty"`
	Message         string               `json:"message,omitempty"`
}

// ExternalRecommendationResponse is returned by the external adapter
// endpoints. OriginalQuery distinguishes the legitimate empty result from the
// error path.
type ExternalRecommendationResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Source          string           `json:"source"`
	OriginalQuery   string           `json:"originalQuery,omitempty"`
}
