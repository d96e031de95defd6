package books

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/booknest/booknest/pkg/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/html"
)

type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

// scrapeClient is the HTTP client for the scrape endpoint. The 10s timeout is
// the only upstream timeout this handler sets.
var scrapeClient = &http.Client{Timeout: 10 * time.Second}

// Scrape fetches an external page and extracts book metadata from Open Graph
// tags and common fallbacks. Fails with 400 when neither a title nor an
// author could be recovered.
func (h *Handler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		return
	}

	httpReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, req.URL, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		return
	}
	httpReq.Header.Set("User-Agent", "BookNest/1.0 (+github.com/booknest/booknest)")

	res, err := scrapeClient.Do(httpReq)
	if err != nil {
		h.log.Warn("scrape_fetch_failed", "url", req.URL, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch the page"})
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch the page"})
		return
	}

	doc, err := html.Parse(res.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse the page"})
		return
	}

	data := extractBookData(doc)
	if data.Title == "" && data.Author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract book data from the page"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookData": data})
}

// extractBookData walks the document collecting metadata. Open Graph values
// win over the <title>/<h1> fallbacks.
func extractBookData(doc *html.Node) models.ScrapedBook {
	var data models.ScrapedBook
	var pageTitle, heading string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				handleMeta(n, &data)
			case "title":
				if pageTitle == "" && n.FirstChild != nil {
					pageTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			case "h1":
				if heading == "" {
					heading = strings.TrimSpace(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if data.Title == "" {
		if heading != "" {
			data.Title = heading
		} else {
			data.Title = pageTitle
		}
	}
	return data
}

func handleMeta(n *html.Node, data *models.ScrapedBook) {
	var name, content string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property", "name":
			name = strings.ToLower(attr.Val)
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}
	if content == "" {
		return
	}

	switch name {
	case "og:title":
		data.Title = content
	case "og:description", "description":
		if data.Description == "" {
			data.Description = content
		}
	case "og:image":
		if data.CoverImageURL == "" {
			data.CoverImageURL = content
		}
	case "author", "book:author", "og:book:author":
		if data.Author == "" {
			data.Author = content
		}
	case "book:isbn", "og:book:isbn", "isbn":
		if data.ISBN == "" {
			data.ISBN = content
		}
	case "book:release_date", "og:book:release_date":
		if data.PublicationDate == "" {
			data.PublicationDate = content
		}
	case "og:site_name":
		if data.Publisher == "" {
			data.Publisher = content
		}
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
