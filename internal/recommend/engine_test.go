package recommend_test

import (
	"strings"
	"testing"

	"github.com/booknest/booknest/internal/recommend"
	"github.com/booknest/booknest/pkg/models"
)

func book(id int64, title, author string, genres ...string) models.Book {
	b := models.Book{ID: id, Title: title, Author: author}
	for i, g := range genres {
		b.Genres = append(b.Genres, models.Genre{ID: int64(i + 1), Name: g})
	}
	return b
}

func TestRecommend_GenreMatchesBeforeFill(t *testing.T) {
	input := []models.Book{
		book(1, "Treasure Island", "Stevenson", "Adventure"),
		book(2, "The Hobbit", "Tolkien", "Fantasy"),
	}
	catalog := append([]models.Book{}, input...)
	catalog = append(catalog,
		book(3, "Kidnapped", "Stevenson", "Adventure"),
		book(4, "The Silmarillion", "Tolkien", "Fantasy"),
		book(5, "A Brief History of Time", "Hawking", "Non-Fiction"),
	)

	recs := recommend.Recommend(input, catalog)

	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d: %+v", len(recs), recs)
	}
	// Genre matches come first, in catalog order.
	if recs[0].Title != "Kidnapped" || recs[1].Title != "The Silmarillion" {
		t.Fatalf("expected genre matches 3 and 4 first, got %+v", recs)
	}
	// Book 5 only arrives through the fill pass.
	if recs[2].Title != "A Brief History of Time" {
		t.Fatalf("expected fill entry last, got %+v", recs)
	}
	// Input books never come back.
	for _, rec := range recs {
		if rec.Title == "Treasure Island" || rec.Title == "The Hobbit" {
			t.Fatalf("recommendation includes input book: %+v", rec)
		}
	}
	if !strings.HasPrefix(recs[0].Reason, "Similar to") {
		t.Fatalf("expected genre reason, got %q", recs[0].Reason)
	}
	if recs[0].Genre != "Adventure" {
		t.Fatalf("expected first matched genre, got %q", recs[0].Genre)
	}
}

func TestRecommend_AuthorPassOnlyWhenFew(t *testing.T) {
	input := []models.Book{book(1, "Emma", "Jane Austen")}
	catalog := []models.Book{
		input[0],
		book(2, "Persuasion", "Jane Austen"),
		book(3, "Mansfield Park", "Jane Austen"),
	}

	recs := recommend.Recommend(input, catalog)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Author != "Jane Austen" {
			t.Fatalf("expected author matches, got %+v", rec)
		}
		if !strings.HasPrefix(rec.Reason, "More from") {
			t.Fatalf("expected author reason, got %q", rec.Reason)
		}
	}
}

func TestRecommend_DedupIsCaseInsensitiveAndTitleOnly(t *testing.T) {
	input := []models.Book{book(1, "Dune", "Frank Herbert", "Science Fiction")}
	catalog := []models.Book{
		input[0],
		book(2, "Foundation", "Asimov", "Science Fiction"),
		book(3, "FOUNDATION", "Someone Else", "Science Fiction"),
	}

	recs := recommend.Recommend(input, catalog)
	if len(recs) != 1 {
		t.Fatalf("expected case-insensitive title dedup to leave 1, got %d: %+v", len(recs), recs)
	}
	if recs[0].Author != "Asimov" {
		t.Fatalf("expected first occurrence kept, got %+v", recs[0])
	}
}

func TestRecommend_CapsAtTen(t *testing.T) {
	input := []models.Book{book(1, "Seed", "A", "Fantasy")}
	catalog := []models.Book{input[0]}
	for i := int64(2); i <= 30; i++ {
		catalog = append(catalog, book(i, strings.Repeat("x", int(i)), "B", "Fantasy"))
	}

	recs := recommend.Recommend(input, catalog)
	if len(recs) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(recs))
	}
}

func TestRecommend_EmptyInput(t *testing.T) {
	catalog := []models.Book{book(1, "Dune", "Frank Herbert", "Science Fiction")}

	recs := recommend.Recommend(nil, catalog)
	// With no input set there are no genre or author preferences; the fill
	// pass still returns catalog entries.
	if len(recs) != 1 {
		t.Fatalf("expected fill to cover empty input, got %d", len(recs))
	}
}

func TestTopGenresAndAuthors(t *testing.T) {
	input := []models.Book{
		book(1, "A", "X", "Fantasy", "Adventure"),
		book(2, "B", "X", "Fantasy"),
		book(3, "C", "Y", "Mystery"),
		book(4, "D", "Z", "Romance"),
		book(5, "E", "W", "Horror"),
		book(6, "F", "V", "Poetry"),
	}

	genres := recommend.TopGenres(input)
	if len(genres) != 5 {
		t.Fatalf("expected top genres capped at 5, got %d", len(genres))
	}
	if genres[0] != "Fantasy" {
		t.Fatalf("expected Fantasy ranked first, got %v", genres)
	}
	// Single-count genres keep input order (stable ties).
	if genres[1] != "Adventure" || genres[2] != "Mystery" {
		t.Fatalf("expected ties in input order, got %v", genres)
	}

	authors := recommend.TopAuthors(input)
	if len(authors) != 3 {
		t.Fatalf("expected top authors capped at 3, got %d", len(authors))
	}
	if authors[0] != "X" {
		t.Fatalf("expected X ranked first, got %v", authors)
	}
}
