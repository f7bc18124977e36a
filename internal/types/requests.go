package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxFactors bounds how many success factors a caller may request.
const MaxFactors = 10

// FactorsRequest asks for the top success factors of a class.
type FactorsRequest struct {
	LabelSet LabelSet `json:"label_set" validate:"required,oneof=broad specific"`
	Class    string   `json:"class" validate:"required"`
	N        int      `json:"n" validate:"min=1,max=10"`
}

// CompareRequest asks for a benchmark-vs-user role score comparison.
// Override values are not validated here; values outside a feature's domain,
// including empty ones, fall back to the default with a note.
type CompareRequest struct {
	Class     string            `json:"class" validate:"required"`
	Overrides map[string]string `json:"overrides"`
}

// AssociationRequest asks for a chi-square association test between two survey columns.
type AssociationRequest struct {
	X string `json:"x" validate:"required"`
	Y string `json:"y" validate:"required,nefield=X"`
}

// Validate validates the FactorsRequest using the validator.
func (r *FactorsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CompareRequest using the validator.
func (r *CompareRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AssociationRequest using the validator.
func (r *AssociationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// HistoryEntry is a persisted comparison request.
type HistoryEntry struct {
	ID               uuid.UUID         `json:"id"`
	LabelSet         LabelSet          `json:"label_set"`
	Class            string            `json:"class"`
	Overrides        map[string]string `json:"overrides"`
	BenchmarkPercent float64           `json:"benchmark_percent"`
	UserPercent      float64           `json:"user_percent"`
	CreatedAt        time.Time         `json:"created_at"`
}
