package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/recommend"
)

// DefaultRelatedLimit matches the service's default related-product count.
const DefaultRelatedLimit = 4

// NewRelatedCmd creates the 'related' command which lists products related
// to one product of a snapshot.
func NewRelatedCmd() *cobra.Command {
	var (
		file  string
		id    string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "related",
		Short:   "List products related to one product",
		Example: `  discoveryctl related --file products.json --id p-1 --limit 6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid --limit %d: must not be negative", limit)
			}

			var products []domain.Product
			if err := readJSONFile(file, cmd.InOrStdin(), &products); err != nil {
				return err
			}

			for _, p := range products {
				if p.ID == id {
					return writeJSON(cmd.OutOrStdout(), recommend.NewSelector().SelectRelated(p, products, limit))
				}
			}
			return fmt.Errorf("product %q not found in %s", id, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Products JSON array (- for stdin)")
	cmd.Flags().StringVar(&id, "id", "", "ID of the current product")
	cmd.Flags().IntVar(&limit, "limit", DefaultRelatedLimit, "Maximum number of related products")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
