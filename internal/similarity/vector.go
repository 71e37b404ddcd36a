package similarity

import "math"

// TermVector maps a token to its occurrence count. Counts are always positive.
type TermVector map[string]int

// Vectorize counts each distinct token.
func Vectorize(tokens []string) TermVector {
	v := make(TermVector, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		v[tok]++
	}
	return v
}

// VectorizeText tokenizes and vectorizes text.
func VectorizeText(text string) TermVector {
	return Vectorize(Tokenize(text))
}

// Dot returns the sum of count products over tokens present in both vectors.
func Dot(a, b TermVector) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum int
	for tok, n := range a {
		if m, ok := b[tok]; ok {
			sum += n * m
		}
	}
	return sum
}

// Magnitude returns the Euclidean length of v.
func (v TermVector) Magnitude() float64 {
	return math.Sqrt(float64(Dot(v, v)))
}

// Cosine computes the cosine similarity of a and b in [0, 1].
// Returns 0 when either vector has zero magnitude.
func Cosine(a, b TermVector) float64 {
	selfA := Dot(a, a)
	selfB := Dot(b, b)
	if selfA == 0 || selfB == 0 {
		return 0
	}
	dot := Dot(a, b)
	if dot == 0 {
		return 0
	}
	// sqrt(|a|²·|b|²) keeps self-similarity exact for integer counts.
	sim := float64(dot) / math.Sqrt(float64(selfA)*float64(selfB))
	return math.Min(sim, 1)
}

// CosineText compares two raw texts.
func CosineText(a, b string) float64 {
	return Cosine(VectorizeText(a), VectorizeText(b))
}
