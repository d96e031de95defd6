package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/booknest/booknest/internal/health"
	"github.com/booknest/booknest/pkg/database"
	"github.com/gin-gonic/gin"
)

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	handler := health.NewHandler(db)
	router := gin.New()
	router.GET("/health", handler.Alive)
	router.GET("/readyz", handler.Ready)

	alive := httptest.NewRecorder()
	router.ServeHTTP(alive, httptest.NewRequest("GET", "/health", nil))
	if alive.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", alive.Code)
	}

	ready := httptest.NewRecorder()
	router.ServeHTTP(ready, httptest.NewRequest("GET", "/readyz", nil))
	if ready.Code != http.StatusOK {
		t.Fatalf("expected 200 from /readyz, got %d", ready.Code)
	}

	db.Close()

	down := httptest.NewRecorder()
	router.ServeHTTP(down, httptest.NewRequest("GET", "/readyz", nil))
	if down.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after closing the database, got %d", down.Code)
	}
}
