package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the counters as JSON at /metrics.
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"books_created":            GetBooksCreated(),
		"recommendations_served":   GetRecommendationsServed(),
		"upstream_failures":        GetUpstreamFailures(),
		"active_event_subscribers": GetActiveEventSubscribers(),
	})
}
