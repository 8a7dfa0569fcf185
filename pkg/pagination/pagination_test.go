package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, PerPage: 20}},
		{"page=3", Params{Page: 3, PerPage: 20}},
		{"per_page=50", Params{Page: 1, PerPage: 50}},
		{"page=2&per_page=100", Params{Page: 2, PerPage: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/products?"+tt.query, nil)

			got, err := FromRequest(req)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromRequest_Invalid(t *testing.T) {
	for _, query := range []string{"page=0", "page=-1", "page=abc", "per_page=0", "per_page=101", "per_page=1.5"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/products?"+query, nil)

			_, err := FromRequest(req)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, DefaultParams().Offset())
	assert.Equal(t, 40, Params{Page: 3, PerPage: 20}.Offset())
}
