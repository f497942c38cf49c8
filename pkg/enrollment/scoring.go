package enrollment

// Scorer compares normalized location strings
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// SimilarText returns a symmetric similarity percentage between 0 and 100.
// The matched character count is the sum over a recursive longest common
// contiguous substring decomposition, scored as 200*M/(len(a)+len(b)).
// Comparison is byte-wise; inputs are expected to be normalized ASCII.
func (s *Scorer) SimilarText(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0.0
	}
	return float64(similarChars(a, b)) * 200.0 / float64(total)
}

// similarChars counts matched characters: the longest common substring, plus
// the matches in the unmatched regions to its left and right.
func similarChars(a, b string) int {
	posA, posB, length := longestCommonSubstring(a, b)
	if length == 0 {
		return 0
	}

	sum := length
	sum += similarChars(a[:posA], b[:posB])
	sum += similarChars(a[posA+length:], b[posB+length:])
	return sum
}

// longestCommonSubstring finds the first longest common contiguous substring.
// Later candidates of equal length do not displace an earlier find.
func longestCommonSubstring(a, b string) (posA, posB, maxLen int) {
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > maxLen {
				posA, posB, maxLen = i, j, k
			}
		}
	}
	return posA, posB, maxLen
}
