// Package selection trains one candidate model per topic count and keeps the most coherent one.
package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/todmy/topic-miner/internal/coherence"
	"github.com/todmy/topic-miner/internal/corpus"
	"github.com/todmy/topic-miner/internal/lda"
)

// ErrNoCandidate is returned when no topic count produced a scored model
var ErrNoCandidate = errors.New("no candidate model could be scored")

// ScoreTolerance is the margin a later candidate must beat the current best by.
// Scores closer than this differ only by floating-point summation order.
const ScoreTolerance = 1e-9

// Trainer fits a model with k topics
type Trainer interface {
	Train(ctx context.Context, c *corpus.Corpus, k int) (*lda.Model, error)
}

// Scorer rates a trained model against the corpus
type Scorer interface {
	Score(model coherence.TopicModel, c *corpus.Corpus) (float64, error)
}

// Candidate is a trained and scored model
type Candidate struct {
	K     int
	Score float64
	Model *lda.Model
}

// CandidateResult records the outcome for one topic count
type CandidateResult struct {
	K     int
	Score float64
	Err   error
}

// Selection holds the winning candidate and the outcome of every topic count evaluated.
// Only the selected model is retained.
type Selection struct {
	Selected Candidate
	Results  []CandidateResult
}

// Scores returns the topic counts that were scored and their coherence, in evaluation order
func (s *Selection) Scores() ([]int, []float64) {
	var (
		ks     []int
		scores []float64
	)
	for _, r := range s.Results {
		if r.Err != nil {
			continue
		}
		ks = append(ks, r.K)
		scores = append(scores, r.Score)
	}
	return ks, scores
}

// Selector runs the train-score loop
type Selector struct {
	trainer Trainer
	scorer  Scorer
	logger  *slog.Logger
}

// NewSelector creates a new selector
func NewSelector(trainer Trainer, scorer Scorer, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Selector{trainer: trainer, scorer: scorer, logger: logger}
}

// Select evaluates k = 1..maxTopics in order and returns the first candidate with the
// highest score; a later candidate replaces it only when ahead by more than ScoreTolerance.
// A candidate that fails to train or score is logged and skipped.
func (s *Selector) Select(ctx context.Context, c *corpus.Corpus, maxTopics int) (*Selection, error) {
	if maxTopics < 1 {
		return nil, fmt.Errorf("%w: num_topics is %d", lda.ErrInvalidTopicCount, maxTopics)
	}
	if maxTopics > c.NumTerms() {
		return nil, fmt.Errorf("%w: num_topics is %d, vocabulary has %d tokens",
			lda.ErrTooManyTopics, maxTopics, c.NumTerms())
	}

	sel := &Selection{}
	var failures []error
	found := false

	for k := 1; k <= maxTopics; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score, model, err := s.evaluate(ctx, c, k)
		if err != nil {
			if ctx.Err() != nil || isConfigError(err) {
				return nil, err
			}
			s.logger.Warn("candidate skipped", "k", k, "error", err)
			sel.Results = append(sel.Results, CandidateResult{K: k, Err: err})
			failures = append(failures, fmt.Errorf("k=%d: %w", k, err))
			continue
		}

		s.logger.Info("candidate scored", "k", k, "coherence", score)
		sel.Results = append(sel.Results, CandidateResult{K: k, Score: score})

		if !found || score > sel.Selected.Score+ScoreTolerance {
			sel.Selected = Candidate{K: k, Score: score, Model: model}
			found = true
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %w", ErrNoCandidate, errors.Join(failures...))
	}

	s.logger.Info("model selected",
		"num_topics", sel.Selected.K,
		"coherence", sel.Selected.Score,
		"evaluated", len(sel.Results),
	)
	return sel, nil
}

func (s *Selector) evaluate(ctx context.Context, c *corpus.Corpus, k int) (float64, *lda.Model, error) {
	model, err := s.trainer.Train(ctx, c, k)
	if err != nil {
		return 0, nil, fmt.Errorf("train: %w", err)
	}

	score, err := s.scorer.Score(model, c)
	if err != nil {
		return 0, nil, fmt.Errorf("score: %w", err)
	}
	return score, model, nil
}

func isConfigError(err error) bool {
	return errors.Is(err, lda.ErrInvalidTopicCount) || errors.Is(err, lda.ErrTooManyTopics)
}
