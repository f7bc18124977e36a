// Package types provides type definitions for structured data used throughout the role-recommender system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// LabelSet identifies one of the two independent target definitions a classifier was trained against.
type LabelSet string

const (
	// LabelSetBroad is the broad career path label (Data Science vs. Tech).
	LabelSetBroad LabelSet = "broad"
	// LabelSetSpecific is the specific job title label.
	LabelSetSpecific LabelSet = "specific"
)

// ClassInfo maps a display name to the internal class identifier the classifier was trained with.
type ClassInfo struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

var labelSetClasses = map[LabelSet][]string{
	LabelSetBroad:    {"Data Science", "Tech"},
	LabelSetSpecific: {"Data Analyst", "Data Scientist", "Software Engineer"},
}

// AllLabelSets returns the supported label sets in display order.
func AllLabelSets() []LabelSet {
	return []LabelSet{LabelSetBroad, LabelSetSpecific}
}

// ParseLabelSet resolves user input such as "broad", "L" or "Specific" to a LabelSet.
func ParseLabelSet(s string) (LabelSet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "broad", "l":
		return LabelSetBroad, nil
	case "specific", "s":
		return LabelSetSpecific, nil
	default:
		return "", fmt.Errorf("unknown label set %q (expected broad or specific)", s)
	}
}

// Suffix returns the artifact file suffix used by the training pipeline ("L" or "S").
func (l LabelSet) Suffix() string {
	if l == LabelSetSpecific {
		return "S"
	}
	return "L"
}

// Title returns the human readable name of the label set.
func (l LabelSet) Title() string {
	if l == LabelSetSpecific {
		return "Specific career role"
	}
	return "Broad career role"
}

// Classes returns the classes of the label set. The position of each class is its
// internal identifier, matching the order the classifier was trained with.
func (l LabelSet) Classes() []ClassInfo {
	names := labelSetClasses[l]
	classes := make([]ClassInfo, len(names))
	for i, name := range names {
		classes[i] = ClassInfo{Name: name, ID: fmt.Sprintf("%d", i)}
	}
	return classes
}

// ClassNames returns the display names of the label set's classes.
func (l LabelSet) ClassNames() []string {
	return append([]string(nil), labelSetClasses[l]...)
}

// ClassID returns the internal identifier for a class display name.
func (l LabelSet) ClassID(name string) (string, bool) {
	for _, c := range l.Classes() {
		if c.Name == name {
			return c.ID, true
		}
	}
	return "", false
}

// ResolveClass accepts either a display name or an internal identifier and returns the class.
func (l LabelSet) ResolveClass(nameOrID string) (ClassInfo, bool) {
	needle := strings.TrimSpace(nameOrID)
	for _, c := range l.Classes() {
		if strings.EqualFold(c.Name, needle) || c.ID == needle {
			return c, true
		}
	}
	return ClassInfo{}, false
}

// LabelSetSummary describes a label set and whether its artifacts are usable.
type LabelSetSummary struct {
	LabelSet   LabelSet    `json:"label_set"`
	Title      string      `json:"title"`
	Classes    []ClassInfo `json:"classes"`
	Available  bool        `json:"available"`
	CanScore   bool        `json:"can_score"`
	Error      string      `json:"error,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
	NumFactors int         `json:"num_factors"`
}
