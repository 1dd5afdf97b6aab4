package lda

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

// TermWeight is one (token id, probability) pair of a topic
type TermWeight struct {
	ID     int
	Weight float64
}

// Model is a trained LDA topic model.
// It is read-only once Train returns it.
type Model struct {
	numTopics int
	numTerms  int
	alpha     []float64
	eta       float64

	// lambda holds the variational topic-word parameters, one row per topic
	lambda      *mat.Dense
	expElogbeta *mat.Dense
}

func newModel(numTopics, numTerms int) *Model {
	alpha := make([]float64, numTopics)
	for i := range alpha {
		alpha[i] = 1.0 / float64(numTopics)
	}
	return &Model{
		numTopics:   numTopics,
		numTerms:    numTerms,
		alpha:       alpha,
		eta:         1.0 / float64(numTopics),
		lambda:      mat.NewDense(numTopics, numTerms, nil),
		expElogbeta: mat.NewDense(numTopics, numTerms, nil),
	}
}

// FromLambda rebuilds a model from saved variational topic-word parameters
func FromLambda(lambda [][]float64) (*Model, error) {
	if len(lambda) == 0 || len(lambda[0]) == 0 {
		return nil, ErrInvalidTopicCount
	}
	m := newModel(len(lambda), len(lambda[0]))
	for t, row := range lambda {
		if len(row) != m.numTerms {
			return nil, fmt.Errorf("lambda row %d has %d terms, want %d", t, len(row), m.numTerms)
		}
		for _, v := range row {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("lambda row %d has non-positive value %v", t, v)
			}
		}
		m.lambda.SetRow(t, row)
	}
	m.updateExpElogbeta()
	return m, nil
}

// NumTopics returns the number of topics
func (m *Model) NumTopics() int {
	return m.numTopics
}

// NumTerms returns the vocabulary size the model was trained on
func (m *Model) NumTerms() int {
	return m.numTerms
}

// Alpha returns a copy of the document-topic prior
func (m *Model) Alpha() []float64 {
	out := make([]float64, len(m.alpha))
	copy(out, m.alpha)
	return out
}

// Eta returns the topic-word prior
func (m *Model) Eta() float64 {
	return m.eta
}

// Topic returns the word distribution of a topic, normalized to sum to one
func (m *Model) Topic(topic int) []float64 {
	row := make([]float64, m.numTerms)
	copy(row, m.lambda.RawRowView(topic))
	if sum := floats.Sum(row); sum > 0 {
		floats.Scale(1/sum, row)
	}
	return row
}

// TopicTerms returns the topn most probable terms of a topic, highest first.
// Equal weights are ordered by ascending id.
func (m *Model) TopicTerms(topic, topn int) []TermWeight {
	dist := m.Topic(topic)

	terms := make([]TermWeight, len(dist))
	for id, w := range dist {
		terms[id] = TermWeight{ID: id, Weight: w}
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Weight > terms[j].Weight
	})

	if topn > 0 && topn < len(terms) {
		terms = terms[:topn]
	}
	return terms
}

// blend moves lambda towards the estimate from one chunk:
// lambda = (1-rho)*lambda + rho*(eta + scale*sstats)
func (m *Model) blend(rho, scale float64, sstats *mat.Dense) {
	m.lambda.Scale(1-rho, m.lambda)
	for t := 0; t < m.numTopics; t++ {
		row := m.lambda.RawRowView(t)
		stats := sstats.RawRowView(t)
		for w := range row {
			row[w] += rho * (m.eta + scale*stats[w])
		}
	}
	m.updateExpElogbeta()
}

func (m *Model) updateExpElogbeta() {
	for t := 0; t < m.numTopics; t++ {
		dirichletExpectationExp(m.lambda.RawRowView(t), m.expElogbeta.RawRowView(t))
	}
}

// dirichletExpectationExp writes exp(E[log x]) for x ~ Dir(alpha) into dst
func dirichletExpectationExp(alpha, dst []float64) {
	psiSum := mathext.Digamma(floats.Sum(alpha))
	for i, a := range alpha {
		dst[i] = math.Exp(mathext.Digamma(a) - psiSum)
	}
}
