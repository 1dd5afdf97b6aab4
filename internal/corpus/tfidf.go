package corpus

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const weightEpsilon = 1e-12

// Tfidf reweights bag-of-words vectors by term frequency times inverse document frequency
type Tfidf struct {
	idf     []float64
	numDocs int
}

// NewTfidf fits document frequencies over the whole bag-of-words corpus
func NewTfidf(bow []BowVector, numTerms int) *Tfidf {
	n := len(bow)

	// Compute document frequency for each term
	df := make([]int, numTerms)
	for _, vec := range bow {
		for _, e := range vec {
			df[e.ID]++
		}
	}

	// IDF: log2(N / df)
	idf := make([]float64, numTerms)
	for id, f := range df {
		if f == 0 {
			continue
		}
		idf[id] = math.Log2(float64(n) / float64(f))
	}

	return &Tfidf{idf: idf, numDocs: n}
}

// IDF returns the inverse document frequency of a token id
func (t *Tfidf) IDF(id int) float64 {
	if id < 0 || id >= len(t.idf) {
		return 0
	}
	return t.idf[id]
}

// Transform returns the L2-normalized TF-IDF vector for one document.
// Terms that occur in every document carry no weight and are dropped.
func (t *Tfidf) Transform(vec BowVector) WeightedVector {
	ids := make([]int, 0, len(vec))
	weights := make([]float64, 0, len(vec))
	for _, e := range vec {
		idf := t.IDF(e.ID)
		if math.Abs(idf) <= weightEpsilon {
			continue
		}
		ids = append(ids, e.ID)
		weights = append(weights, float64(e.Count)*idf)
	}

	if norm := floats.Norm(weights, 2); norm > 0 {
		floats.Scale(1/norm, weights)
	}

	out := make(WeightedVector, 0, len(ids))
	for i, id := range ids {
		if math.Abs(weights[i]) <= weightEpsilon {
			continue
		}
		out = append(out, WeightedEntry{ID: id, Weight: weights[i]})
	}
	return out
}

// TransformAll applies Transform to every vector of the corpus
func (t *Tfidf) TransformAll(bow []BowVector) []WeightedVector {
	out := make([]WeightedVector, len(bow))
	for i, vec := range bow {
		out[i] = t.Transform(vec)
	}
	return out
}
