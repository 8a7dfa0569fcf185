package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utafrali/marketplace-discovery/internal/behavior"
	"github.com/utafrali/marketplace-discovery/internal/behavior/memory"
	"github.com/utafrali/marketplace-discovery/internal/discovery"
	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// FilterResult is the output of the 'filter' command.
type FilterResult struct {
	Mode     domain.DisplayMode `json:"mode"`
	Total    int                `json:"total"`
	Products []domain.Product   `json:"products"`
}

// NewFilterCmd creates the 'filter' command which searches, filters and
// sorts a product file.
func NewFilterCmd() *cobra.Command {
	var (
		file     string
		criteria domain.Criteria
		sort     string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Search, filter and sort a product snapshot",
		Example: `  discoveryctl filter --file products.json --query ring
  discoveryctl filter --file products.json --category necklace --min-rating 4 --sort rating`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.IsValidSortKey(sort) {
				return fmt.Errorf("invalid --sort %q: must be one of %v", sort, domain.ValidSortKeys())
			}
			if criteria.MinRating < domain.MinProductRating || criteria.MinRating > domain.MaxProductRating {
				return fmt.Errorf("invalid --min-rating %g: must be between 0 and 5", criteria.MinRating)
			}
			criteria.SortBy = domain.SortKey(sort)

			var products []domain.Product
			if err := readJSONFile(file, cmd.InOrStdin(), &products); err != nil {
				return err
			}

			log := logger.Discard()
			engine := discovery.NewEngine(behavior.NewStore(memory.New(), "", log), log)
			out := engine.Discover(products, criteria)

			return writeJSON(cmd.OutOrStdout(), FilterResult{
				Mode:     discovery.ClassifyDisplayMode(criteria, len(out)),
				Total:    len(out),
				Products: out,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Products JSON array (- for stdin)")
	cmd.Flags().StringVarP(&criteria.Query, "query", "q", "", "Case-insensitive text query")
	cmd.Flags().StringVar(&criteria.Category, "category", "", "Design type or category")
	cmd.Flags().Float64Var(&criteria.MinRating, "min-rating", 0, "Minimum average rating")
	cmd.Flags().StringVar(&sort, "sort", "", "Order: recommended, newest, name, rating")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
