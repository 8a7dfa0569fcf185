package validator

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratingRequest struct {
	Kind    string   `json:"kind" validate:"required,oneof=product shop"`
	Score   *float64 `json:"score" validate:"required,gte=1,lte=5"`
	Comment string   `json:"comment" validate:"max=10"`
}

func ptr(f float64) *float64 { return &f }

func TestValidate_Success(t *testing.T) {
	err := Validate(ratingRequest{Kind: "shop", Score: ptr(4), Comment: "nice"})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(ratingRequest{Kind: "shop"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["score"])
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := Validate(ratingRequest{Kind: "blog", Score: ptr(7), Comment: strings.Repeat("x", 11)})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be one of: product shop", fields["kind"])
	assert.Equal(t, "must be less than or equal to 5", fields["score"])
	assert.Equal(t, "length must be at most 10 characters", fields["comment"])
	assert.Len(t, valErr.Messages(), 3)
}

func TestValidate_ZeroPointerIsPresent(t *testing.T) {
	err := Validate(ratingRequest{Kind: "product", Score: ptr(0)})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be greater than or equal to 1", valErr.Fields()["score"])
}

func TestValidationError_AddAndOrNil(t *testing.T) {
	var empty ValidationError
	assert.NoError(t, empty.OrNil())

	verr := &ValidationError{}
	verr.Add("rating", "range", "must be between 1 and 5")
	verr.Add("rating", "whole", "must be a whole number")
	require.Error(t, verr.OrNil())

	assert.Equal(t, "must be between 1 and 5; must be a whole number", verr.Fields()["rating"])
	assert.Equal(t, "field 'rating' must be between 1 and 5; field 'rating' must be a whole number", verr.Error())
}

func TestIsWhole(t *testing.T) {
	assert.True(t, IsWhole(3))
	assert.True(t, IsWhole(-2))
	assert.False(t, IsWhole(3.5))
	assert.False(t, IsWhole(math.NaN()))
	assert.False(t, IsWhole(math.Inf(1)))
}

func TestDecodeAndValidate(t *testing.T) {
	body := bytes.NewBufferString(`{"kind":"product","score":5}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)

	var dst ratingRequest
	require.NoError(t, DecodeAndValidate(httptest.NewRecorder(), req, &dst, 1<<10))
	assert.Equal(t, 5.0, *dst.Score)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{`))

	var dst ratingRequest
	err := DecodeAndValidate(httptest.NewRecorder(), req, &dst, 1<<10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"kind":"product","score":5,"stars":5}`))

	var dst ratingRequest
	err := DecodeAndValidate(httptest.NewRecorder(), req, &dst, 1<<10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "stars"`)
}

func TestDecodeAndValidate_TooLarge(t *testing.T) {
	body := `{"kind":"product","score":5,"comment":"` + strings.Repeat("a", 64) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var dst ratingRequest
	err := DecodeAndValidate(httptest.NewRecorder(), req, &dst, 32)
	require.Error(t, err)
	var tooLarge *http.MaxBytesError
	assert.ErrorAs(t, err, &tooLarge)
}

func TestDecodeAndValidate_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

	var dst ratingRequest
	err := DecodeAndValidate(httptest.NewRecorder(), req, &dst, 1<<10)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeAndValidate_RuleViolation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"kind":"order","score":5}`))

	var dst ratingRequest
	err := DecodeAndValidate(httptest.NewRecorder(), req, &dst, 1<<10)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Violations[0].Field)
}
