package recommend

import (
	"sort"
	"strings"

	"github.com/booknest/booknest/pkg/models"
)

const maxRecommendations = 10

// nameCount tracks a name's frequency plus the order it was first seen, so
// ties rank by input order.
type nameCount struct {
	name  string
	count int
	first int
}

func countNames(counts map[string]*nameCount, order *int, name string) {
	if name == "" {
		return
	}
	if c, ok := counts[name]; ok {
		c.count++
		return
	}
	counts[name] = &nameCount{name: name, count: 1, first: *order}
	*order++
}

func topNames(counts map[string]*nameCount, n int) []string {
	ranked := make([]*nameCount, 0, len(counts))
	for _, c := range counts {
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	names := make([]string, len(ranked))
	for i, c := range ranked {
		names[i] = c.name
	}
	return names
}

// TopGenres ranks the genres of the input set by frequency and returns at
// most five.
func TopGenres(input []models.Book) []string {
	counts := map[string]*nameCount{}
	order := 0
	for _, b := range input {
		for _, g := range b.Genres {
			countNames(counts, &order, g.Name)
		}
	}
	return topNames(counts, 5)
}

// TopAuthors ranks the authors of the input set by frequency and returns at
// most three.
func TopAuthors(input []models.Book) []string {
	counts := map[string]*nameCount{}
	order := 0
	for _, b := range input {
		countNames(counts, &order, b.Author)
	}
	return topNames(counts, 3)
}

// Recommend scores the catalog against the input set and returns up to ten
// recommendations. Three passes: genre overlap first, then author overlap
// when fewer than five were found, then a catalog-order fill when fewer than
// eight. Output is deduplicated by lowercased title; the same title from two
// authors counts as one entry.
func Recommend(input, catalog []models.Book) []models.Recommendation {
	inputIDs := make(map[int64]struct{}, len(input))
	for _, b := range input {
		inputIDs[b.ID] = struct{}{}
	}

	genreSet := make(map[string]struct{})
	for _, g := range TopGenres(input) {
		genreSet[g] = struct{}{}
	}
	authorSet := make(map[string]struct{})
	for _, a := range TopAuthors(input) {
		authorSet[a] = struct{}{}
	}

	recs := []models.Recommendation{}
	seen := map[string]struct{}{}

	emit := func(rec models.Recommendation, title string) {
		recs = append(recs, rec)
		seen[strings.ToLower(title)] = struct{}{}
	}
	skip := func(b models.Book) bool {
		if _, in := inputIDs[b.ID]; in {
			return true
		}
		_, dup := seen[strings.ToLower(b.Title)]
		return dup
	}

	for _, b := range catalog {
		if len(recs) >= maxRecommendations {
			break
		}
		if skip(b) {
			continue
		}
		matched := []string{}
		for _, g := range b.Genres {
			if _, ok := genreSet[g.Name]; ok {
				matched = append(matched, g.Name)
			}
		}
		if len(matched) == 0 {
			continue
		}
		emit(models.Recommendation{
			Title:  b.Title,
			Author: b.Author,
			Reason: "Similar to " + strings.Join(matched, ", "),
			Genre:  matched[0],
			Cover:  b.CoverImageURL,
		}, b.Title)
	}

	if len(recs) < 5 {
		for _, b := range catalog {
			if len(recs) >= maxRecommendations {
				break
			}
			if skip(b) {
				continue
			}
			if _, ok := authorSet[b.Author]; !ok {
				continue
			}
			emit(models.Recommendation{
				Title:  b.Title,
				Author: b.Author,
				Reason: "More from " + b.Author,
				Cover:  b.CoverImageURL,
			}, b.Title)
		}
	}

	if len(recs) < 8 {
		for _, b := range catalog {
			if len(recs) >= maxRecommendations {
				break
			}
			if skip(b) {
				continue
			}
			emit(models.Recommendation{
				Title:  b.Title,
				Author: b.Author,
				Reason: "Popular in the catalog",
				Cover:  b.CoverImageURL,
			}, b.Title)
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
