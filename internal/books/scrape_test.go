package books_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/booknest/booknest/internal/books"
	"github.com/booknest/booknest/pkg/database"
	"github.com/booknest/booknest/pkg/models"
	"github.com/gin-gonic/gin"
)

const scrapeFixture = `<!DOCTYPE html>
<html>
<head>
  <title>Some Retailer Page</title>
  <meta property="og:title" content="The Left Hand of Darkness" />
  <meta property="og:description" content="A groundbreaking work of science fiction." />
  <meta property="og:image" content="https://example.com/cover.jpg" />
  <meta name="author" content="Ursula K. Le Guin" />
  <meta property="book:isbn" content="9780441478125" />
  <meta property="og:site_name" content="Ace Books" />
</head>
<body><h1>Ignored Heading</h1></body>
</html>`

func setupScrapeRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := books.NewHandler(books.NewStore(db), nil)
	router := gin.New()
	router.POST("/api/books/scrape", handler.Scrape)
	return router
}

func TestScrape_ExtractsOpenGraphMetadata(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scrapeFixture))
	}))
	defer upstream.Close()

	router := setupScrapeRouter(t)
	resp := request(t, router, "POST", "/api/books/scrape", gin.H{"url": upstream.URL})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		BookData models.ScrapedBook `json:"bookData"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}

	data := body.BookData
	if data.Title != "The Left Hand of Darkness" {
		t.Errorf("title = %q", data.Title)
	}
	if data.Author != "Ursula K. Le Guin" {
		t.Errorf("author = %q", data.Author)
	}
	if data.ISBN != "9780441478125" {
		t.Errorf("isbn = %q", data.ISBN)
	}
	if data.CoverImageURL != "https://example.com/cover.jpg" {
		t.Errorf("cover = %q", data.CoverImageURL)
	}
	if data.Publisher != "Ace Books" {
		t.Errorf("publisher = %q", data.Publisher)
	}
}

func TestScrape_FallsBackToHeading(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Page Title</title></head><body><h1>Heading Title</h1></body></html>`))
	}))
	defer upstream.Close()

	router := setupScrapeRouter(t)
	resp := request(t, router, "POST", "/api/books/scrape", gin.H{"url": upstream.URL})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		BookData models.ScrapedBook `json:"bookData"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.BookData.Title != "Heading Title" {
		t.Fatalf("expected h1 fallback, got %q", body.BookData.Title)
	}
}

func TestScrape_Validation(t *testing.T) {
	router := setupScrapeRouter(t)

	missing := request(t, router, "POST", "/api/books/scrape", gin.H{})
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without url, got %d", missing.Code)
	}

	badScheme := request(t, router, "POST", "/api/books/scrape", gin.H{"url": "ftp://example.com"})
	if badScheme.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-http scheme, got %d", badScheme.Code)
	}
}

func TestScrape_NoExtractableData(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing useful</p></body></html>`))
	}))
	defer upstream.Close()

	router := setupScrapeRouter(t)
	resp := request(t, router, "POST", "/api/books/scrape", gin.H{"url": upstream.URL})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when nothing extractable, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestScrape_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := setupScrapeRouter(t)
	resp := request(t, router, "POST", "/api/books/scrape", gin.H{"url": upstream.URL})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for upstream failure, got %d", resp.Code)
	}
}
