package coherence

import "math"

// DefaultEpsilon smooths zero co-occurrence probabilities
const DefaultEpsilon = 1e-12

// Calculator handles the pairwise confirmation measures used by coherence
type Calculator struct {
	epsilon float64
}

// NewCalculator creates a calculator with the given epsilon
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Calculator{epsilon: epsilon}
}

// NPMI calculates normalized pointwise mutual information (range: -1 to 1)
//
// NPMI(a,b) = log((P(a,b) + ε) / (P(a)P(b))) / -log(P(a,b) + ε)
//
// Where probabilities are window counts divided by N.
func (c *Calculator) NPMI(nAB, nA, nB, N int64) float64 {
	if N == 0 || nA == 0 || nB == 0 {
		return 0
	}

	n := float64(N)
	pAB := float64(nAB)/n + c.epsilon
	pA := float64(nA) / n
	pB := float64(nB) / n

	logRatio := math.Log(pAB / (pA * pB))
	return logRatio / -math.Log(pAB)
}

// LogConditional calculates log(P(a|b)) with smoothing, the UMass confirmation measure
//
// log((P(a,b) + ε) / P(b))
func (c *Calculator) LogConditional(nAB, nB, N int64) float64 {
	if N == 0 || nB == 0 {
		return 0
	}

	n := float64(N)
	return math.Log((float64(nAB)/n + c.epsilon) / (float64(nB) / n))
}
