package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/rating"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// NewStatsCmd creates the 'stats' command which summarizes a rating file.
func NewStatsCmd() *cobra.Command {
	var (
		file  string
		sort  string
		score int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a rating collection",
		Example: `  discoveryctl stats --file ratings.json
  discoveryctl stats --file ratings.json --sort highest --score 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.IsValidRatingSortMode(sort) {
				return fmt.Errorf("invalid --sort %q: must be one of %v", sort, domain.ValidRatingSortModes())
			}
			if score < 0 || score > domain.MaxScore {
				return fmt.Errorf("invalid --score %d: must be between 0 and %d", score, domain.MaxScore)
			}

			var ratings []domain.Rating
			if err := readJSONFile(file, cmd.InOrStdin(), &ratings); err != nil {
				return err
			}

			agg := rating.NewAggregator(logger.Discard())
			return writeJSON(cmd.OutOrStdout(), agg.Summarize(ratings, domain.RatingSortMode(sort), score))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Ratings JSON array (- for stdin)")
	cmd.Flags().StringVar(&sort, "sort", string(domain.RatingSortNewest), "Order: newest, oldest, highest, lowest")
	cmd.Flags().IntVar(&score, "score", 0, "Only list ratings with this score (0 lists all)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
