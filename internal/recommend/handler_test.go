package recommend_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/booknest/booknest/internal/auth"
	"github.com/booknest/booknest/internal/books"
	"github.com/booknest/booknest/internal/recommend"
	"github.com/booknest/booknest/pkg/database"
	"github.com/booknest/booknest/pkg/models"
	"github.com/gin-gonic/gin"
)

func setupEngine(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := books.NewStore(db)
	handler := recommend.NewHandler(db, store, recommend.NewGoogleBooksClient(""), recommend.NewTasteDiveClient(""))

	router := gin.New()
	group := router.Group("/api/recommendations")
	group.Use(auth.Identify())
	{
		group.GET("", handler.ForUser)
		group.GET("/reading-list/:id", handler.ForReadingList)
	}
	return router, db
}

func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()
	store := books.NewStore(db)
	seed := []struct {
		title, author string
		genres        []int64
	}{
		{"Treasure Island", "Stevenson", []int64{1}},  // Adventure
		{"The Hobbit", "Tolkien", []int64{2}},         // Fantasy
		{"Kidnapped", "Stevenson", []int64{1}},        // Adventure
		{"The Silmarillion", "Tolkien", []int64{2}},   // Fantasy
		{"A Brief History", "Hawking", []int64{10}},   // Non-Fiction
	}
	for _, s := range seed {
		if _, err := store.Create(models.CreateBookRequest{
			Title:  s.title,
			Author: s.author,
			Genres: s.genres,
		}, nil); err != nil {
			t.Fatalf("seed %s: %v", s.title, err)
		}
	}
}

func TestForUser_EmptyHistoryIsOK(t *testing.T) {
	router, _ := setupEngine(t)

	resp := get(t, router, "/api/recommendations")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty history, got %d: %s", resp.Code, resp.Body.String())
	}

	var body models.RecommendationResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if len(body.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %+v", body.Recommendations)
	}
	if body.Message == "" {
		t.Fatal("expected a user-facing message")
	}
}

func TestForUser_PrefersGenreMatchesAndExcludesRead(t *testing.T) {
	router, db := setupEngine(t)
	seedCatalog(t, db)

	// Default user has read books 1 and 2 (Adventure, Fantasy).
	for _, bookID := range []int{1, 2} {
		if _, err := db.Exec(`INSERT INTO user_books (user_id, book_id, read_status, rating) VALUES (1, ?, 'read', 4)`, bookID); err != nil {
			t.Fatalf("seed association: %v", err)
		}
	}

	resp := get(t, router, "/api/recommendations")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body models.RecommendationResponse
	json.Unmarshal(resp.Body.Bytes(), &body)

	if len(body.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %+v", body.Recommendations)
	}
	if body.Recommendations[0].Title != "Kidnapped" || body.Recommendations[1].Title != "The Silmarillion" {
		t.Fatalf("expected genre matches before fill, got %+v", body.Recommendations)
	}
	for _, rec := range body.Recommendations {
		if rec.Title == "Treasure Island" || rec.Title == "The Hobbit" {
			t.Fatalf("read book recommended back: %+v", rec)
		}
	}

	if body.Stats == nil || body.Stats.BookCount != 2 {
		t.Fatalf("expected stats over 2 read books, got %+v", body.Stats)
	}
	if body.Stats.AverageRating != 4 {
		t.Fatalf("expected average rating 4, got %v", body.Stats.AverageRating)
	}
}

func TestForReadingList(t *testing.T) {
	router, db := setupEngine(t)
	seedCatalog(t, db)

	if _, err := db.Exec(`INSERT INTO reading_lists (user_id, name) VALUES (1, 'Favorites')`); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	// Empty list is a 200 with a message.
	empty := get(t, router, "/api/recommendations/reading-list/1")
	if empty.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty list, got %d", empty.Code)
	}
	var emptyBody models.RecommendationResponse
	json.Unmarshal(empty.Body.Bytes(), &emptyBody)
	if len(emptyBody.Recommendations) != 0 || emptyBody.Message == "" {
		t.Fatalf("expected empty list message, got %+v", emptyBody)
	}

	if _, err := db.Exec(`INSERT INTO reading_list_books (reading_list_id, book_id, position) VALUES (1, 1, 1)`); err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	resp := get(t, router, "/api/recommendations/reading-list/1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body models.RecommendationResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Stats == nil || body.Stats.ListName != "Favorites" {
		t.Fatalf("expected list name in stats, got %+v", body.Stats)
	}
	if body.Recommendations[0].Title != "Kidnapped" {
		t.Fatalf("expected Adventure match first, got %+v", body.Recommendations)
	}

	missing := get(t, router, "/api/recommendations/reading-list/999")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown list, got %d", missing.Code)
	}
}
