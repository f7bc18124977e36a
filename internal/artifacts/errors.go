// Package artifacts loads the static training-time artifacts consumed by the recommender:
// attribution tables, ordinal feature domains, benchmark vectors and model evaluation files.
package artifacts

import (
	"errors"
	"fmt"
)

// Artifact kinds used in DataUnavailableError.
const (
	ArtifactAttributions = "attributions"
	ArtifactDomains      = "domains"
	ArtifactBenchmark    = "benchmark"
	ArtifactQuestionMap  = "question_map"
	ArtifactClassifier   = "classifier"
	ArtifactReport       = "classification_report"
	ArtifactConfusion    = "confusion_matrix"
	ArtifactSurvey       = "survey"
)

// DataUnavailableError reports a required artifact that is missing or structurally malformed.
type DataUnavailableError struct {
	Artifact string
	Path     string
	Message  string
	Cause    error
}

func (e *DataUnavailableError) Error() string {
	msg := fmt.Sprintf("data unavailable: %s", e.Artifact)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Cause
}

// IsDataUnavailable reports whether err is, or wraps, a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var target *DataUnavailableError
	return errors.As(err, &target)
}

func unavailable(artifact, path, message string, cause error) *DataUnavailableError {
	return &DataUnavailableError{Artifact: artifact, Path: path, Message: message, Cause: cause}
}
