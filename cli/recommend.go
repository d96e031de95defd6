package cli

import (
	"fmt"

	"github.com/booknest/booknest/pkg/models"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get recommendations based on your reading history",
	RunE: func(cmd *cobra.Command, args []string) error {
		var res models.RecommendationResponse
		if err := apiGet("/api/recommendations", &res); err != nil {
			return err
		}

		if res.Message != "" {
			fmt.Println(res.Message)
			return nil
		}

		if res.Stats != nil {
			fmt.Printf("Based on %d read book(s)", res.Stats.BookCount)
			if res.Stats.AverageRating > 0 {
				fmt.Printf(", average rating %.1f", res.Stats.AverageRating)
			}
			fmt.Println()
		}

		fmt.Println("Recommendations:")
		for _, rec := range res.Recommendations {
			fmt.Printf("  %s by %s", rec.Title, rec.Author)
			if rec.Reason != "" {
				fmt.Printf("  (%s)", rec.Reason)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}
