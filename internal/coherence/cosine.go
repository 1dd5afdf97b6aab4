package coherence

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity calculates the cosine similarity between two context vectors.
// Returns 0 when the lengths differ or either vector has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	magA := math.Sqrt(floats.Dot(a, a))
	magB := math.Sqrt(floats.Dot(b, b))

	// Avoid division by zero
	if magA == 0 || magB == 0 {
		return 0
	}

	return floats.Dot(a, b) / (magA * magB)
}
