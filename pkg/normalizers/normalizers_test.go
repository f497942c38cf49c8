package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple town name",
			input:    "Springfield",
			expected: "springfield",
		},
		{
			name:     "county prefix removed",
			input:    "County Cork",
			expected: "cork",
		},
		{
			name:     "abbreviated county removed",
			input:    "Co. Galway",
			expected: "galway",
		},
		{
			name:     "country suffix removed",
			input:    "Dublin, Ireland",
			expected: "dublin",
		},
		{
			name:     "city suffix removed",
			input:    "Dublin City",
			expected: "dublin",
		},
		{
			name:     "punctuation stripped",
			input:    "St. John's",
			expected: "st johns",
		},
		{
			name:     "noise words removed inside words",
			input:    "Athenry",
			expected: "anry",
		},
		{
			name:     "only noise words yields empty",
			input:    "County, Ireland",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "digits preserved",
			input:    "Zone 42",
			expected: "zone 42",
		},
		{
			name:     "interior whitespace preserved",
			input:    "  New   Ross  ",
			expected: "new   ross",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeLocation(tt.input))
		})
	}
}

func TestNormalizeLocationIdempotent(t *testing.T) {
	inputs := []string{"County Cork", "Dublin, Ireland", "Athenry", "Zone 42"}
	for _, input := range inputs {
		once := NormalizeLocation(input)
		assert.Equal(t, once, NormalizeLocation(once), "normalizing twice should be stable for %q", input)
	}
}

func TestRegistry(t *testing.T) {
	fn, ok := Get("location")
	assert.True(t, ok)
	assert.Equal(t, "cork", fn("County Cork"))

	assert.Equal(t, "value", Apply("value", "does-not-exist"))
	assert.Equal(t, "hello", ApplyChain("  HELLO  ", "lowercase", "trim"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}
