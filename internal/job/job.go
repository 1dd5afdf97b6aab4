// Package job mines the chat history of one merchant for one month.
package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/todmy/topic-miner/internal/corpus"
	"github.com/todmy/topic-miner/internal/pipeline"
	"github.com/todmy/topic-miner/internal/source"
	"github.com/todmy/topic-miner/internal/storage"
	"github.com/todmy/topic-miner/pkg/models"
)

// Cleaner normalizes message content
type Cleaner interface {
	Clean(msgs []models.ChatMessage) []models.ChatMessage
}

// Config holds job settings
type Config struct {
	ReplaceExisting bool // delete the period's previous topic terms before emitting
}

// Outcome summarizes a job run
type Outcome struct {
	Merchant string
	Period   models.Period
	Messages int
	Run      *models.Run // nil when nothing was mined
	Saved    int
}

// Job ties a message source, the cleaner and the pipeline together
type Job struct {
	config   Config
	source   source.Source
	cleaner  Cleaner
	pipeline *pipeline.Pipeline
	terms    storage.TopicTermRepository
	runs     storage.RunRepository
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a new job. terms and runs may be nil for a dry run.
func New(config Config, src source.Source, cleaner Cleaner, p *pipeline.Pipeline,
	terms storage.TopicTermRepository, runs storage.RunRepository, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Job{
		config:   config,
		source:   src,
		cleaner:  cleaner,
		pipeline: p,
		terms:    terms,
		runs:     runs,
		logger:   logger,
		now:      time.Now,
	}
}

// Run mines the given period
func (j *Job) Run(ctx context.Context, period models.Period) (*Outcome, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("invalid period %d-%02d", period.Year, period.Month)
	}

	msgs, err := j.source.Messages(ctx, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("fetching chat messages: %w", err)
	}

	out := &Outcome{Period: period, Messages: len(msgs)}
	if len(msgs) == 0 {
		j.logger.Info("no chat message yet", "year", period.Year, "month", period.Month)
		return out, nil
	}
	j.logger.Info("chat messages fetched", "total", len(msgs))

	// the export holds one merchant's conversations
	out.Merchant = msgs[0].Name

	cleaned := j.cleaner.Clean(msgs)
	docs := make([]corpus.Document, len(cleaned))
	for i, m := range cleaned {
		docs[i] = corpus.Tokenize(m.Content)
	}

	rc := pipeline.RunContext{Merchant: out.Merchant, Period: period}
	if j.config.ReplaceExisting && j.terms != nil {
		// previous rows go only once a new model has been selected
		rc.BeforeEmit = func(ctx context.Context) error {
			if err := j.terms.DeleteByPeriod(ctx, out.Merchant, period); err != nil {
				return fmt.Errorf("deleting previous topic terms: %w", err)
			}
			return nil
		}
	}

	res, err := j.pipeline.Run(ctx, docs, rc)
	if err != nil {
		return nil, err
	}
	if res.NoData {
		return out, nil
	}
	out.Saved = res.Saved

	ks, scores := res.Selection.Scores()
	run := &models.Run{
		ID:              uuid.New(),
		MerchantName:    out.Merchant,
		Year:            period.Year,
		Month:           period.Month,
		NumTopics:       res.Selection.Selected.K,
		Coherence:       res.Selection.Selected.Score,
		EvaluatedTopics: ks,
		CoherenceScores: make([]float32, len(scores)),
		Documents:       res.Corpus.NumDocs(),
		Vocabulary:      res.Corpus.NumTerms(),
		CreatedAt:       j.now().UTC(),
	}
	for i, s := range scores {
		run.CoherenceScores[i] = float32(s)
	}
	out.Run = run

	if j.runs != nil {
		if err := j.runs.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
	}

	j.logger.Info("job finished",
		"run_id", run.ID,
		"merchant_name", run.MerchantName,
		"num_topics", run.NumTopics,
		"coherence", run.Coherence,
		"saved", out.Saved,
	)
	return out, nil
}
