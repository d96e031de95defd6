package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
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

const (
	googleBooksBaseURL   = "https://www.googleapis.com/books/v1/volumes"
	defaultExternalLimit = 5
)

var (
	errRateLimited   = errors.New("upstream rate limit")
	errQuotaExceeded = errors.New("upstream quota exceeded")
)

// subjectQueries are the fixed genre strategies tried after the author query.
var subjectQueries = []string{"fiction", "fantasy", "mystery", "romance", "science"}

// GoogleBooksClient queries the Google Books volumes API. BaseURL is
// overridable for tests.
type GoogleBooksClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewGoogleBooksClient(apiKey string) *GoogleBooksClient {
	return &GoogleBooksClient{
		BaseURL:    googleBooksBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type googleVolumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			Categories []string `json:"categories"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search runs one volumes query and normalizes the items. 429 and 403 map to
// sentinel errors so the handler can propagate the status.
func (g *GoogleBooksClient) Search(query string, max int) ([]models.Recommendation, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(max))
	if g.APIKey != "" {
		params.Set("key", g.APIKey)
	}

	res, err := g.HTTPClient.Get(g.BaseURL + "?" + params.Encode())
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, errRateLimited
	case http.StatusForbidden:
		return nil, errQuotaExceeded
	default:
		return nil, fmt.Errorf("google books returned status %d", res.StatusCode)
	}

	var body googleVolumesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}

	recs := make([]models.Recommendation, 0, len(body.Items))
	for _, item := range body.Items {
		info := item.VolumeInfo
		if info.Title == "" {
			continue
		}
		rec := models.Recommendation{
			Title:  info.Title,
			Cover:  info.ImageLinks.Thumbnail,
			Source: "Google Books",
		}
		if len(info.Authors) > 0 {
			rec.Author = strings.Join(info.Authors, ", ")
		}
		if len(info.Categories) > 0 {
			rec.Genre = info.Categories[0]
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// GoogleBooks runs the fallback strategy chain: one author query, the fixed
// subject queries, then a broad fiction query. A failed call is logged and
// skipped; only rate-limit and quota failures abort the request.
func (h *Handler) GoogleBooks(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	author := strings.TrimSpace(c.Query("author"))
	limit := externalLimit(c.Query("limit"))

	cleaned := utils.CleanTitle(title)

	queries := []string{}
	if author != "" {
		queries = append(queries, fmt.Sprintf(`inauthor:"%s"`, author))
	}
	for _, subject := range subjectQueries {
		queries = append(queries, "subject:"+subject+" "+cleaned)
	}
	queries = append(queries, "subject:fiction")

	recs := []models.Recommendation{}
	seen := map[string]struct{}{}

	for _, query := range queries {
		if len(recs) >= limit {
			break
		}

		results, err := h.google.Search(query, limit*2)
		if err != nil {
			if errors.Is(err, errRateLimited) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
				return
			}
			if errors.Is(err, errQuotaExceeded) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Google Books API quota exceeded. Please try again later."})
				return
			}
			metrics.IncrementUpstreamFailures()
			h.log.Warn("google_books_query_failed", "query", query, "error", err.Error())
			continue
		}

		for _, rec := range results {
			if len(recs) >= limit {
				break
			}
			key := strings.ToLower(rec.Title)
			if _, dup := seen[key]; dup {
				continue
			}
			if titleOverlaps(rec.Title, cleaned) {
				continue
			}
			seen[key] = struct{}{}
			recs = append(recs, rec)
		}
	}

	metrics.IncrementRecommendationsServed()
	c.JSON(http.StatusOK, models.ExternalRecommendationResponse{
		Recommendations: recs,
		Source:          "Google Books",
		OriginalQuery:   title,
	})
}

// titleOverlaps reports whether a candidate looks like another edition of the
// source title: a substring either way, or any shared word of four or more
// characters.
func titleOverlaps(candidate, source string) bool {
	cand := strings.ToLower(candidate)
	src := strings.ToLower(source)
	if cand == "" || src == "" {
		return false
	}
	if strings.Contains(cand, src) || strings.Contains(src, cand) {
		return true
	}

	candWords := map[string]struct{}{}
	for _, w := range strings.Fields(cand) {
		candWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(src) {
		if len(w) < 4 {
			continue
		}
		if _, ok := candWords[w]; ok {
			return true
		}
	}
	return false
}

func externalLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultExternalLimit
	}
	if limit > maxRecommendations {
		return maxRecommendations
	}
	return limit
}
