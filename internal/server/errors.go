package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/ranking"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/scoring"
	"github.com/jonathan/role-recommender/internal/stats"
)

// ErrUnknownLabelSet indicates a label set path segment that names no label set
type ErrUnknownLabelSet struct {
	Value string
}

func (e *ErrUnknownLabelSet) Error() string {
	return "unknown label set: " + e.Value + " (expected broad or specific)"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// ErrHistoryDisabled indicates the history endpoint was called without a database
type ErrHistoryDisabled struct{}

func (e *ErrHistoryDisabled) Error() string {
	return "history is not enabled (no database configured)"
}

// ErrHistoryNotFound indicates a history id with no stored entry
type ErrHistoryNotFound struct {
	ID string
}

func (e *ErrHistoryNotFound) Error() string {
	return "history entry not found: " + e.ID
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		unknownLabelSet *ErrUnknownLabelSet
		validation      *ErrValidation
		historyDisabled *ErrHistoryDisabled
		historyMissing  *ErrHistoryNotFound
		fieldErrors     validator.ValidationErrors
		unavailable     *artifacts.DataUnavailableError
		scoringClass    *scoring.UnknownClassError
		rankingClass    *ranking.UnknownClassError
		unknownFeature  *recommend.UnknownFeatureError
		unknownColumn   *stats.UnknownColumnError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &unknownLabelSet), errors.As(err, &historyMissing):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &fieldErrors):
		return http.StatusBadRequest
	case errors.As(err, &rankingClass), errors.As(err, &unknownFeature), errors.As(err, &unknownColumn):
		return http.StatusBadRequest
	case errors.As(err, &scoringClass), errors.Is(err, stats.ErrDegenerateTable):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable), errors.As(err, &historyDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
