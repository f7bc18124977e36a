package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactorsRequest_Validate(t *testing.T) {
	valid := FactorsRequest{LabelSet: LabelSetBroad, Class: "Tech", N: 3}
	assert.NoError(t, valid.Validate())

	tooMany := FactorsRequest{LabelSet: LabelSetBroad, Class: "Tech", N: MaxFactors + 1}
	assert.Error(t, tooMany.Validate())

	zero := FactorsRequest{LabelSet: LabelSetBroad, Class: "Tech"}
	assert.Error(t, zero.Validate())

	badSet := FactorsRequest{LabelSet: "medium", Class: "Tech", N: 3}
	assert.Error(t, badSet.Validate())
}

func TestCompareRequest_Validate(t *testing.T) {
	ok := CompareRequest{Class: "Tech", Overrides: map[string]string{"Education": "Master"}}
	assert.NoError(t, ok.Validate())

	noOverrides := CompareRequest{Class: "Tech"}
	assert.NoError(t, noOverrides.Validate())

	missingClass := CompareRequest{Overrides: map[string]string{"Education": "Master"}}
	assert.Error(t, missingClass.Validate())

	emptyValue := CompareRequest{Class: "Tech", Overrides: map[string]string{"Education": ""}}
	assert.NoError(t, emptyValue.Validate(), "empty values fall back to the default downstream")

	many := CompareRequest{Class: "Tech", Overrides: map[string]string{}}
	for i := 0; i < 25; i++ {
		many.Overrides[fmt.Sprintf("Feature %d", i)] = "x"
	}
	assert.NoError(t, many.Validate())
}

func TestAssociationRequest_Validate(t *testing.T) {
	assert.NoError(t, (&AssociationRequest{X: "Education", Y: "Role"}).Validate())
	assert.Error(t, (&AssociationRequest{X: "Education", Y: "Education"}).Validate())
	assert.Error(t, (&AssociationRequest{X: "Education"}).Validate())
}
