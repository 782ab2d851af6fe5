// Package similarity scores embedding vectors against each other.
package similarity

import "math"

// Cosine returns the cosine similarity of a and b.
// Empty vectors, vectors of different length and zero-norm vectors carry no
// usable signal and score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
