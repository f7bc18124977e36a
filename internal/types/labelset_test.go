package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabelSet(t *testing.T) {
	tests := []struct {
		input   string
		want    LabelSet
		wantErr bool
	}{
		{"broad", LabelSetBroad, false},
		{"Broad", LabelSetBroad, false},
		{"L", LabelSetBroad, false},
		{"specific", LabelSetSpecific, false},
		{" s ", LabelSetSpecific, false},
		{"medium", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLabelSet(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelSet_Classes(t *testing.T) {
	broad := LabelSetBroad.Classes()
	require.Len(t, broad, 2)
	assert.Equal(t, ClassInfo{Name: "Data Science", ID: "0"}, broad[0])
	assert.Equal(t, ClassInfo{Name: "Tech", ID: "1"}, broad[1])

	specific := LabelSetSpecific.Classes()
	require.Len(t, specific, 3)
	assert.Equal(t, "Software Engineer", specific[2].Name)
	assert.Equal(t, "2", specific[2].ID)
}

func TestLabelSet_ClassIDIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		id, ok := LabelSetSpecific.ClassID("Data Scientist")
		require.True(t, ok)
		assert.Equal(t, "1", id)
	}

	_, ok := LabelSetBroad.ClassID("Data Scientist")
	assert.False(t, ok)
}

func TestLabelSet_ResolveClass(t *testing.T) {
	c, ok := LabelSetBroad.ResolveClass("tech")
	require.True(t, ok)
	assert.Equal(t, "Tech", c.Name)

	c, ok = LabelSetSpecific.ResolveClass("0")
	require.True(t, ok)
	assert.Equal(t, "Data Analyst", c.Name)

	_, ok = LabelSetSpecific.ResolveClass("Astronaut")
	assert.False(t, ok)
}

func TestLabelSet_Suffix(t *testing.T) {
	assert.Equal(t, "L", LabelSetBroad.Suffix())
	assert.Equal(t, "S", LabelSetSpecific.Suffix())
}

func TestFeatureVector_CloneIsIndependent(t *testing.T) {
	v := FeatureVector{"Education": "Master", "Years of Experience": "2-5"}
	c := v.Clone()
	c["Education"] = "PhD"

	assert.Equal(t, "Master", v["Education"])
	assert.False(t, v.Equal(c))
	assert.True(t, v.Equal(v.Clone()))
	assert.Equal(t, []string{"Education", "Years of Experience"}, v.Keys())
}
