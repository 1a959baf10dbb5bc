package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		expected string
	}{
		{
			name:     "single word",
			term:     "Creatine",
			expected: `"Creatine"[Title/Abstract]`,
		},
		{
			name:     "three words",
			term:     "Omega 3 Fish",
			expected: `"Omega 3 Fish"[Title/Abstract]`,
		},
		{
			name:     "long phrase uses broader search",
			term:     "branched chain amino acids powder",
			expected: "branched chain amino acids powder AND (supplement[Title/Abstract] OR supplementation[Title/Abstract])",
		},
		{
			name:     "strips supplement suffix",
			term:     "magnesium supplement",
			expected: `"magnesium"[Title/Abstract]`,
		},
		{
			name:     "strips supplementation suffix",
			term:     "creatine supplementation",
			expected: `"creatine"[Title/Abstract]`,
		},
		{
			name:     "suffix stripping can shorten to simple query",
			term:     "vitamin d three supplementation",
			expected: `"vitamin d three"[Title/Abstract]`,
		},
		{
			name:     "surrounding whitespace",
			term:     "  Zinc  ",
			expected: `"Zinc"[Title/Abstract]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildQuery(tt.term))
		})
	}
}
