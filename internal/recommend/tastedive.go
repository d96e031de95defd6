package recommend

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/booknest/booknest/pkg/metrics"
	"github.com/booknest/booknest/pkg/models"
	"github.com/booknest/booknest/pkg/utils"
	"github.com/gin-gonic/gin"
)

const tasteDiveBaseURL = "https://tastedive.com/api/similar"

// TasteDiveClient queries the TasteDive similarity API. BaseURL is
// overridable for tests.
type TasteDiveClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewTasteDiveClient(apiKey string) *TasteDiveClient {
	return &TasteDiveClient{
		BaseURL:    tasteDiveBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type tasteDiveItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type tasteDiveResponse struct {
	Similar struct {
		Info    []tasteDiveItem `json:"info"`
		Results []tasteDiveItem `json:"results"`
	} `json:"similar"`
}

// Similar runs the single upstream call. The caller maps the status code; a
// non-200 comes back as statusError.
func (t *TasteDiveClient) Similar(query string, limit int) (*tasteDiveResponse, int, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "book")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("verbose", "1")
	if t.APIKey != "" {
		params.Set("k", t.APIKey)
	}

	res, err := t.HTTPClient.Get(t.BaseURL + "?" + params.Encode())
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, res.StatusCode, nil
	}

	var body tasteDiveResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, res.StatusCode, err
	}
	return &body, res.StatusCode, nil
}

// TasteDive is the single-call similarity endpoint. Zero upstream results is
// a legitimate 200 with an empty list, distinct from the error paths.
func (h *Handler) TasteDive(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	author := strings.TrimSpace(c.Query("author"))
	limit := externalLimit(c.Query("limit"))

	query := "book:" + utils.CleanTitle(title)
	if author != "" {
		query += " " + author
	}

	body, status, err := h.taste.Similar(query, limit)
	if err != nil {
		metrics.IncrementUpstreamFailures()
		h.log.Error("tastedive_request_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations"})
		return
	}

	switch status {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
		return
	case http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "No recommendations found"})
		return
	default:
		metrics.IncrementUpstreamFailures()
		h.log.Error("tastedive_bad_status", "status", status)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations"})
		return
	}

	recs := []models.Recommendation{}
	for _, item := range body.Similar.Results {
		if !strings.EqualFold(item.Type, "book") {
			continue
		}
		if len(recs) >= limit {
			break
		}
		recs = append(recs, models.Recommendation{
			Title:  item.Name,
			Source: "TasteDive",
			Reason: "Readers of " + title + " also liked this",
		})
	}

	metrics.IncrementRecommendationsServed()
	c.JSON(http.StatusOK, models.ExternalRecommendationResponse{
		Recommendations: recs,
		Source:          "TasteDive",
		OriginalQuery:   title,
	})
}
