package metrics_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/booknest/booknest/pkg/metrics"
	"github.com/gin-gonic/gin"
)

func TestCountersAreConcurrencySafe(t *testing.T) {
	metrics.Reset()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.IncrementBooksCreated()
			metrics.IncrementRecommendationsServed()
		}()
	}
	wg.Wait()

	if got := metrics.GetBooksCreated(); got != 50 {
		t.Fatalf("expected 50 books created, got %d", got)
	}
	if got := metrics.GetRecommendationsServed(); got != 50 {
		t.Fatalf("expected 50 recommendations served, got %d", got)
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics.Reset()

	metrics.IncrementUpstreamFailures()
	metrics.SetActiveEventSubscribers(3)

	router := gin.New()
	router.GET("/metrics", metrics.Handler)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("GET", "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]int64
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if body["upstream_failures"] != 1 {
		t.Fatalf("expected 1 upstream failure, got %d", body["upstream_failures"])
	}
	if body["active_event_subscribers"] != 3 {
		t.Fatalf("expected 3 subscribers, got %d", body["active_event_subscribers"])
	}
}
