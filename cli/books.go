package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/booknest/booknest/cli/config"
	"github.com/booknest/booknest/pkg/models"
	"github.com/spf13/cobra"
)

var (
	bookAuthor string
	bookGenres []int64
	bookLimit  int
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Catalog commands",
	Long:  `Search, list, and add books in the BookNest catalog.`,
}

// apiGet performs an authenticated GET against the configured server.
func apiGet(path string, out interface{}) error {
	serverURL, err := config.GetServerURL()
	if err != nil {
		printError("Configuration not initialized")
		fmt.Println("Run: booknest init")
		return err
	}

	req, err := http.NewRequest(http.MethodGet, serverURL+path, nil)
	if err != nil {
		return err
	}
	if cfg, err := config.Load(); err == nil && cfg.User.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.User.Token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		printError("Server connection error")
		return err
	}
	defer res.Body.Close()

	data, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		var errRes map[string]string
		json.Unmarshal(data, &errRes)
		printError(errRes["error"])
		return fmt.Errorf("request failed with status %d", res.StatusCode)
	}
	return json.Unmarshal(data, out)
}

func printBooks(books []models.Book) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	for _, b := range books {
		year := ""
		if b.PublicationYear != nil {
			year = fmt.Sprintf(" (%d)", *b.PublicationYear)
		}
		fmt.Printf("  #%d  %s by %s%s\n", b.ID, b.Title, b.Author, year)
	}
}

var booksSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("search", args[0])
		params.Set("limit", strconv.Itoa(bookLimit))

		var page models.PaginatedBooksResponse
		if err := apiGet("/api/books?"+params.Encode(), &page); err != nil {
			return err
		}

		fmt.Printf("Found %d book(s):\n", page.Total)
		printBooks(page.Books)
		return nil
	},
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(bookLimit))

		var page models.PaginatedBooksResponse
		if err := apiGet("/api/books?"+params.Encode(), &page); err != nil {
			return err
		}

		fmt.Printf("Catalog (%d total):\n", page.Total)
		printBooks(page.Books)
		return nil
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a book to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bookAuthor == "" {
			return fmt.Errorf("author is required (--author)")
		}
		if len(bookGenres) == 0 {
			return fmt.Errorf("at least one genre id is required (--genre)")
		}

		serverURL, err := config.GetServerURL()
		if err != nil {
			printError("Configuration not initialized")
			return err
		}

		body, _ := json.Marshal(models.CreateBookRequest{
			Title:  args[0],
			Author: bookAuthor,
			Genres: bookGenres,
		})

		req, err := http.NewRequest(http.MethodPost, serverURL+"/api/books", bytes.NewBuffer(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if cfg, err := config.Load(); err == nil && cfg.User.Token != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.User.Token)
		}

		res, err := http.DefaultClient.Do(req)
		if err != nil {
			printError("Server connection error")
			return err
		}
		defer res.Body.Close()

		data, _ := io.ReadAll(res.Body)
		if res.StatusCode == http.StatusConflict {
			printError("A book with this title and author already exists")
			return fmt.Errorf("duplicate book")
		}
		if res.StatusCode != http.StatusCreated {
			var errRes map[string]string
			json.Unmarshal(data, &errRes)
			printError(errRes["error"])
			return fmt.Errorf("request failed with status %d", res.StatusCode)
		}

		var book models.Book
		json.Unmarshal(data, &book)
		printSuccess(fmt.Sprintf("Added #%d %s by %s", book.ID, book.Title, book.Author))
		return nil
	},
}

func init() {
	booksCmd.PersistentFlags().IntVarP(&bookLimit, "limit", "l", 10, "Maximum results")
	booksAddCmd.Flags().StringVarP(&bookAuthor, "author", "a", "", "Book author")
	booksAddCmd.Flags().Int64SliceVarP(&bookGenres, "genre", "g", nil, "Genre id (repeatable)")

	booksCmd.AddCommand(booksSearchCmd)
	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksAddCmd)
	rootCmd.AddCommand(booksCmd)
}
