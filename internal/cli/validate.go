package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	"github.com/utafrali/marketplace-discovery/internal/rating"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
	"github.com/utafrali/marketplace-discovery/pkg/validator"
)

// ErrInvalidRating is returned by 'validate' after printing the violations.
var ErrInvalidRating = errors.New("rating submission is invalid")

// ValidateResult is the output of the 'validate' command.
type ValidateResult struct {
	Valid      bool                  `json:"valid"`
	Violations []validator.Violation `json:"violations,omitempty"`
}

// NewValidateCmd creates the 'validate' command which checks a rating
// submission against the submission rules.
func NewValidateCmd() *cobra.Command {
	var (
		score   float64
		comment string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a rating submission",
		Example: `  discoveryctl validate --rating 4 --comment "lovely finish"
  discoveryctl validate --rating 4.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input domain.RatingInput
			if cmd.Flags().Changed("rating") {
				input.Rating = &score
			}
			if cmd.Flags().Changed("comment") {
				input.Comment = &comment
			}

			result := ValidateResult{Valid: true}
			err := rating.NewAggregator(logger.Discard()).Validate(input)
			var verr *validator.ValidationError
			if errors.As(err, &verr) {
				result = ValidateResult{Violations: verr.Violations}
			}

			if werr := writeJSON(cmd.OutOrStdout(), result); werr != nil {
				return werr
			}
			if !result.Valid {
				return ErrInvalidRating
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&score, "rating", 0, "Score, a whole number from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "Optional comment")

	return cmd
}
