package recommend_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/booknest/booknest/internal/books"
	"github.com/booknest/booknest/internal/recommend"
	"github.com/booknest/booknest/pkg/database"
	"github.com/booknest/booknest/pkg/models"
	"github.com/gin-gonic/gin"
)

func setupAdapters(t *testing.T, google, taste http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	googleClient := &recommend.GoogleBooksClient{HTTPClient: &http.Client{Timeout: 5 * time.Second}}
	if google != nil {
		srv := httptest.NewServer(google)
		t.Cleanup(srv.Close)
		googleClient.BaseURL = srv.URL
	}

	tasteClient := &recommend.TasteDiveClient{HTTPClient: &http.Client{Timeout: 5 * time.Second}}
	if taste != nil {
		srv := httptest.NewServer(taste)
		t.Cleanup(srv.Close)
		tasteClient.BaseURL = srv.URL
	}

	handler := recommend.NewHandler(db, books.NewStore(db), googleClient, tasteClient)
	router := gin.New()
	router.GET("/api/recommendations/google-books", handler.GoogleBooks)
	router.GET("/api/recommendations/tastedive", handler.TasteDive)
	return router
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func googleVolumes(titles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type volumeInfo struct {
			Title   string   `json:"title"`
			Authors []string `json:"authors"`
		}
		var items []map[string]volumeInfo
		for _, title := range titles {
			items = append(items, map[string]volumeInfo{
				"volumeInfo": {Title: title, Authors: []string{"Somebody"}},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	}
}

func TestGoogleBooks_RequiresTitle(t *testing.T) {
	router := setupAdapters(t, googleVolumes(), nil)

	resp := get(t, router, "/api/recommendations/google-books")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without title, got %d", resp.Code)
	}
}

func TestGoogleBooks_FiltersOverlapAndDedups(t *testing.T) {
	router := setupAdapters(t, googleVolumes(
		"Dune Messiah",      // shares the word "dune": filtered
		"Foundation",        // kept
		"foundation",        // duplicate by lowercased title
		"Hyperion",          // kept
	), nil)

	resp := get(t, router, "/api/recommendations/google-books?title=Dune")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body models.ExternalRecommendationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if body.Source != "Google Books" || body.OriginalQuery != "Dune" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if len(body.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %+v", body.Recommendations)
	}
	for _, rec := range body.Recommendations {
		if rec.Title == "Dune Messiah" {
			t.Fatalf("overlapping title was not filtered: %+v", body.Recommendations)
		}
		if rec.Source != "Google Books" {
			t.Fatalf("expected source on each item, got %+v", rec)
		}
	}
}

func TestGoogleBooks_RateLimitPropagates(t *testing.T) {
	router := setupAdapters(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	resp := get(t, router, "/api/recommendations/google-books?title=Dune")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
}

func TestGoogleBooks_QuotaPropagates(t *testing.T) {
	router := setupAdapters(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, nil)

	resp := get(t, router, "/api/recommendations/google-books?title=Dune")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "Google Books API quota exceeded. Please try again later." {
		t.Fatalf("expected quota message, got %q", body["error"])
	}
}

func TestGoogleBooks_AbsorbsPerCallFailures(t *testing.T) {
	// Every upstream call fails with a server error; the handler still
	// answers 200 with whatever accumulated, which is nothing.
	router := setupAdapters(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, nil)

	resp := get(t, router, "/api/recommendations/google-books?title=Dune")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with absorbed failures, got %d", resp.Code)
	}

	var body models.ExternalRecommendationResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if len(body.Recommendations) != 0 {
		t.Fatalf("expected empty list, got %+v", body.Recommendations)
	}
}

func TestTasteDive_RequiresTitle(t *testing.T) {
	router := setupAdapters(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	resp := get(t, router, "/api/recommendations/tastedive")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without title, got %d", resp.Code)
	}
}

func TestTasteDive_MapsResults(t *testing.T) {
	router := setupAdapters(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"similar": map[string]interface{}{
				"info": []map[string]string{{"name": "Dune", "type": "book"}},
				"results": []map[string]string{
					{"name": "Foundation", "type": "book"},
					{"name": "Blade Runner", "type": "movie"},
					{"name": "Hyperion", "type": "book"},
				},
			},
		})
	})

	resp := get(t, router, "/api/recommendations/tastedive?title=Dune")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body models.ExternalRecommendationResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if len(body.Recommendations) != 2 {
		t.Fatalf("expected movies filtered out, got %+v", body.Recommendations)
	}
	if body.Recommendations[0].Title != "Foundation" || body.Recommendations[1].Title != "Hyperion" {
		t.Fatalf("unexpected titles: %+v", body.Recommendations)
	}
}

func TestTasteDive_ZeroResultsBody(t *testing.T) {
	router := setupAdapters(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"similar":{"info":[],"results":[]}}`))
	})

	resp := get(t, router, "/api/recommendations/tastedive?title=Dune")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != `{"recommendations":[],"source":"TasteDive","originalQuery":"Dune"}` {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestTasteDive_StatusMapping(t *testing.T) {
	cases := []struct {
		upstream int
		want     int
	}{
		{http.StatusTooManyRequests, http.StatusTooManyRequests},
		{http.StatusNotFound, http.StatusNotFound},
		{http.StatusBadGateway, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		router := setupAdapters(t, nil, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.upstream)
		})
		resp := get(t, router, "/api/recommendations/tastedive?title=Dune")
		if resp.Code != tc.want {
			t.Errorf("upstream %d: expected %d, got %d", tc.upstream, tc.want, resp.Code)
		}
	}
}
