package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarText(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical strings",
			a:        "dublin",
			b:        "dublin",
			expected: 100.0,
		},
		{
			name:     "no common substring",
			a:        "abc",
			b:        "xyz",
			expected: 0.0,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 0.0,
		},
		{
			name:     "one empty",
			a:        "dublin",
			b:        "",
			expected: 0.0,
		},
		{
			name: "single dropped letter",
			// "dubl" matches, then "n" inside "in": 5 of 11 chars
			a:        "dubln",
			b:        "dublin",
			expected: 1000.0 / 11.0,
		},
		{
			name: "classic example",
			// "Wor" plus "d": 4 matched of 9 chars
			a:        "World",
			b:        "Word",
			expected: 800.0 / 9.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, scorer.SimilarText(tt.a, tt.b), 0.0001)
		})
	}
}

func TestSimilarTextSymmetric(t *testing.T) {
	scorer := NewScorer()

	pairs := [][2]string{
		{"dubln", "dublin"},
		{"cork", "corcaigh"},
		{"springfield", "springfeld"},
		{"galway", "galway west"},
	}

	for _, pair := range pairs {
		assert.InDelta(t, scorer.SimilarText(pair[0], pair[1]), scorer.SimilarText(pair[1], pair[0]), 0.0001,
			"score should be symmetric for %q / %q", pair[0], pair[1])
	}
}

func TestSimilarTextRange(t *testing.T) {
	scorer := NewScorer()

	pairs := [][2]string{
		{"a", "b"},
		{"ab", "ba"},
		{"limerick", "limerick junction"},
		{"x", "xxxxxxxxxx"},
	}

	for _, pair := range pairs {
		score := scorer.SimilarText(pair[0], pair[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestLongestCommonSubstringFirstWins(t *testing.T) {
	// Two common substrings of equal length; the earlier position is kept
	posA, posB, length := longestCommonSubstring("abxcd", "abycd")
	assert.Equal(t, 0, posA)
	assert.Equal(t, 0, posB)
	assert.Equal(t, 2, length)
}
