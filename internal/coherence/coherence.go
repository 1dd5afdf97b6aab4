// Package coherence scores topic models by how often their top words co-occur in the corpus.
package coherence

import (
	"errors"
	"fmt"
	"math"

	"github.com/todmy/topic-miner/internal/corpus"
	"github.com/todmy/topic-miner/internal/lda"
)

var (
	ErrUndefinedCoherence = errors.New("coherence is undefined")
	ErrUnknownMeasure     = errors.New("unknown coherence measure")
)

// Measure names a coherence measure
type Measure string

const (
	MeasureCV    Measure = "c_v"
	MeasureNPMI  Measure = "c_npmi"
	MeasureUMass Measure = "u_mass"
)

// ParseMeasure converts a configuration string into a Measure.
// An empty string selects c_v.
func ParseMeasure(s string) (Measure, error) {
	switch Measure(s) {
	case "":
		return MeasureCV, nil
	case MeasureCV, MeasureNPMI, MeasureUMass:
		return Measure(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMeasure, s)
}

// DefaultWindowSize returns the sliding window size a measure uses by default.
// u_mass works on whole documents and returns 0.
func (m Measure) DefaultWindowSize() int {
	switch m {
	case MeasureCV:
		return 110
	case MeasureNPMI:
		return 10
	}
	return 0
}

// TopicModel is the part of a trained model the scorer reads
type TopicModel interface {
	NumTopics() int
	TopicTerms(topic, topn int) []lda.TermWeight
}

// Config holds scoring parameters
type Config struct {
	Measure    Measure
	TopN       int // top words per topic
	WindowSize int // sliding window size, 0 uses the measure default
	Epsilon    float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Measure: MeasureCV,
		TopN:    20,
		Epsilon: DefaultEpsilon,
	}
}

// Scorer computes one coherence number per model
type Scorer struct {
	config Config
	calc   *Calculator
}

// NewScorer creates a new scorer, filling zero config values with defaults
func NewScorer(config Config) (*Scorer, error) {
	measure, err := ParseMeasure(string(config.Measure))
	if err != nil {
		return nil, err
	}
	config.Measure = measure
	if config.TopN <= 0 {
		config.TopN = DefaultConfig().TopN
	}
	if config.WindowSize <= 0 {
		config.WindowSize = measure.DefaultWindowSize()
	}
	if config.Epsilon <= 0 {
		config.Epsilon = DefaultEpsilon
	}

	return &Scorer{config: config, calc: NewCalculator(config.Epsilon)}, nil
}

// Config returns the effective scoring configuration
func (s *Scorer) Config() Config {
	return s.config
}

// Score returns the coherence of model over the corpus it was trained on.
// Higher is better. Neither argument is modified.
func (s *Scorer) Score(model TopicModel, c *corpus.Corpus) (float64, error) {
	k := model.NumTopics()
	if k == 0 {
		return 0, fmt.Errorf("%w: model has no topics", ErrUndefinedCoherence)
	}

	topics := make([][]int, k)
	relevant := make(map[int]bool)
	for t := 0; t < k; t++ {
		for _, tw := range model.TopicTerms(t, s.config.TopN) {
			topics[t] = append(topics[t], tw.ID)
			relevant[tw.ID] = true
		}
	}

	var counter *Counter
	if s.config.Measure == MeasureUMass {
		counter = CountDocuments(c.BoW, relevant)
	} else {
		counter = CountSlidingWindows(c.Dictionary, c.Documents, relevant, s.config.WindowSize)
	}
	if counter.Windows() == 0 {
		return 0, fmt.Errorf("%w: no context windows", ErrUndefinedCoherence)
	}

	total := 0.0
	for t, words := range topics {
		var (
			value float64
			err   error
		)
		switch s.config.Measure {
		case MeasureCV:
			value, err = s.indirectCosine(counter, words)
		case MeasureNPMI:
			value, err = s.meanOnePreceding(words, func(wi, wj int) float64 {
				return s.calc.NPMI(counter.PairCount(wi, wj), counter.Count(wi), counter.Count(wj), counter.Windows())
			})
		case MeasureUMass:
			value, err = s.meanOnePreceding(words, func(wi, wj int) float64 {
				return s.calc.LogConditional(counter.PairCount(wi, wj), counter.Count(wj), counter.Windows())
			})
		}
		if err != nil {
			return 0, fmt.Errorf("topic %d: %w", t, err)
		}
		total += value
	}

	score := total / float64(k)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: score is %v", ErrUndefinedCoherence, score)
	}
	return score, nil
}

// indirectCosine compares the NPMI context vector of every top word with the
// summed context vector of the whole top-word set and averages the similarities.
func (s *Scorer) indirectCosine(counter *Counter, words []int) (float64, error) {
	if len(words) == 0 {
		return 0, fmt.Errorf("%w: topic has no words", ErrUndefinedCoherence)
	}

	n := counter.Windows()
	vectors := make([][]float64, len(words))
	set := make([]float64, len(words))
	for i, wi := range words {
		vectors[i] = make([]float64, len(words))
		for j, wj := range words {
			v := s.calc.NPMI(counter.PairCount(wi, wj), counter.Count(wi), counter.Count(wj), n)
			vectors[i][j] = v
			set[j] += v
		}
	}

	sum := 0.0
	for _, vec := range vectors {
		sum += CosineSimilarity(vec, set)
	}
	return sum / float64(len(words)), nil
}

// meanOnePreceding averages confirm(w_i, w_j) over every pair where w_j ranks above w_i
func (s *Scorer) meanOnePreceding(words []int, confirm func(wi, wj int) float64) (float64, error) {
	if len(words) < 2 {
		return 0, fmt.Errorf("%w: topic needs at least two words, has %d", ErrUndefinedCoherence, len(words))
	}

	sum := 0.0
	pairs := 0
	for i := 1; i < len(words); i++ {
		for j := 0; j < i; j++ {
			sum += confirm(words[i], words[j])
			pairs++
		}
	}
	return sum / float64(pairs), nil
}
