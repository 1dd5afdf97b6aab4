package coherence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/topic-miner/internal/corpus"
	"github.com/todmy/topic-miner/internal/lda"
)

// pairedCorpus has ids a=0 b=1 c=2 d=3, with a/b and c/d always together
func pairedCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Build([]corpus.Document{
		{"a", "b"},
		{"a", "b"},
		{"c", "d"},
		{"c", "d"},
	})
	require.NoError(t, err)
	return c
}

func model(t *testing.T, lambda [][]float64) *lda.Model {
	t.Helper()
	m, err := lda.FromLambda(lambda)
	require.NoError(t, err)
	return m
}

// coherent groups the words that co-occur, incoherent splits them
func coherent(t *testing.T) *lda.Model {
	return model(t, [][]float64{{10, 9, 1, 1}, {1, 1, 10, 9}})
}

func incoherent(t *testing.T) *lda.Model {
	return model(t, [][]float64{{10, 1, 9, 1}, {1, 10, 1, 9}})
}

func scorer(t *testing.T, measure Measure, topn int) *Scorer {
	t.Helper()
	s, err := NewScorer(Config{Measure: measure, TopN: topn})
	require.NoError(t, err)
	return s
}

func TestScoreCV(t *testing.T) {
	c := pairedCorpus(t)
	s := scorer(t, MeasureCV, 2)

	good, err := s.Score(coherent(t), c)
	require.NoError(t, err)
	bad, err := s.Score(incoherent(t), c)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, good, 1e-9)
	assert.Greater(t, good, bad)
}

func TestScoreNPMI(t *testing.T) {
	c := pairedCorpus(t)
	s := scorer(t, MeasureNPMI, 2)

	good, err := s.Score(coherent(t), c)
	require.NoError(t, err)
	bad, err := s.Score(incoherent(t), c)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, good, 1e-9)
	assert.Less(t, bad, -0.9)
}

func TestScoreUMass(t *testing.T) {
	c := pairedCorpus(t)
	s := scorer(t, MeasureUMass, 2)

	good, err := s.Score(coherent(t), c)
	require.NoError(t, err)
	bad, err := s.Score(incoherent(t), c)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, good, 1e-9)
	assert.Greater(t, good, bad)
}

func TestScoreIsDeterministic(t *testing.T) {
	c := pairedCorpus(t)
	s := scorer(t, MeasureCV, 0)
	m := incoherent(t)

	first, err := s.Score(m, c)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := s.Score(m, c)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

type emptyModel struct{ topics int }

func (m emptyModel) NumTopics() int {
	return m.topics
}

func (m emptyModel) TopicTerms(topic, topn int) []lda.TermWeight {
	return []lda.TermWeight{{ID: 0, Weight: 1}}
}

func TestScoreUndefinedWithoutWindows(t *testing.T) {
	c, err := corpus.Build([]corpus.Document{{}, {}})
	require.NoError(t, err)

	_, err = scorer(t, MeasureCV, 0).Score(emptyModel{topics: 1}, c)
	assert.ErrorIs(t, err, ErrUndefinedCoherence)
}

func TestScoreUndefinedForModelWithoutTopics(t *testing.T) {
	_, err := scorer(t, MeasureCV, 0).Score(emptyModel{}, pairedCorpus(t))
	assert.ErrorIs(t, err, ErrUndefinedCoherence)
}

func TestScoreNPMIUndefinedForSingleWordTopics(t *testing.T) {
	_, err := scorer(t, MeasureNPMI, 1).Score(coherent(t), pairedCorpus(t))
	assert.ErrorIs(t, err, ErrUndefinedCoherence)
}

func TestNewScorerDefaults(t *testing.T) {
	s, err := NewScorer(Config{})
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, MeasureCV, cfg.Measure)
	assert.Equal(t, 20, cfg.TopN)
	assert.Equal(t, 110, cfg.WindowSize)
	assert.Equal(t, DefaultEpsilon, cfg.Epsilon)

	s, err = NewScorer(Config{Measure: MeasureNPMI})
	require.NoError(t, err)
	assert.Equal(t, 10, s.Config().WindowSize)
}

func TestParseMeasure(t *testing.T) {
	m, err := ParseMeasure("u_mass")
	require.NoError(t, err)
	assert.Equal(t, MeasureUMass, m)

	_, err = ParseMeasure("c_uci")
	assert.ErrorIs(t, err, ErrUnknownMeasure)
}

func TestCountSlidingWindows(t *testing.T) {
	c, err := corpus.Build([]corpus.Document{{"a", "b", "c", "a"}, {"b"}})
	require.NoError(t, err)
	relevant := map[int]bool{0: true, 1: true, 2: true}

	counter := CountSlidingWindows(c.Dictionary, c.Documents, relevant, 2)

	// [a b] [b c] [c a] from the first document, [b] from the second
	assert.Equal(t, int64(4), counter.Windows())
	assert.Equal(t, int64(2), counter.Count(0))
	assert.Equal(t, int64(3), counter.Count(1))
	assert.Equal(t, int64(1), counter.PairCount(0, 1))
	assert.Equal(t, int64(1), counter.PairCount(2, 0))
	assert.Equal(t, int64(3), counter.PairCount(1, 1))
}

func TestCountSlidingWindowsShortDocument(t *testing.T) {
	c, err := corpus.Build([]corpus.Document{{"a", "b", "a"}})
	require.NoError(t, err)

	counter := CountSlidingWindows(c.Dictionary, c.Documents, map[int]bool{0: true, 1: true}, 10)
	assert.Equal(t, int64(1), counter.Windows())
	assert.Equal(t, int64(1), counter.Count(0))
}

func TestCountDocuments(t *testing.T) {
	c := pairedCorpus(t)
	counter := CountDocuments(c.BoW, map[int]bool{0: true, 2: true})

	assert.Equal(t, int64(4), counter.Windows())
	assert.Equal(t, int64(2), counter.Count(0))
	assert.Equal(t, int64(0), counter.Count(1))
	assert.Equal(t, int64(0), counter.PairCount(0, 2))
}

func TestNPMI(t *testing.T) {
	calc := NewCalculator(0)

	assert.InDelta(t, 1.0, calc.NPMI(5, 5, 5, 10), 1e-9)
	assert.Less(t, calc.NPMI(0, 5, 5, 10), -0.9)
	assert.Equal(t, 0.0, calc.NPMI(0, 0, 5, 10))
	assert.False(t, math.IsNaN(calc.NPMI(10, 10, 10, 10)))
}

func TestLogConditional(t *testing.T) {
	calc := NewCalculator(0)

	assert.InDelta(t, 0.0, calc.LogConditional(4, 4, 8), 1e-9)
	assert.InDelta(t, math.Log(0.5), calc.LogConditional(2, 4, 8), 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 1}, []float64{-1, -1}), 1e-12)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 1}))
}
