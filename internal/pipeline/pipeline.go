// Package pipeline wires corpus building, model selection, term extraction and emission
// for one batch of documents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/todmy/topic-miner/internal/corpus"
	"github.com/todmy/topic-miner/internal/emitter"
	"github.com/todmy/topic-miner/internal/selection"
	"github.com/todmy/topic-miner/internal/topics"
	"github.com/todmy/topic-miner/pkg/models"
)

// Config holds pipeline parameters
type Config struct {
	NumTopics int // K, candidates are evaluated for k = 1..K
	TopN      int // words extracted per topic
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		NumTopics: 10,
		TopN:      topics.DefaultTopN,
	}
}

// RunContext identifies who and which period the documents belong to
type RunContext struct {
	Merchant string
	Period   models.Period

	// BeforeEmit runs once a model is selected and before the first record is written.
	// It is not called for rejected or failed runs, nor when the pipeline has no emitter.
	BeforeEmit func(ctx context.Context) error
}

// Result is the outcome of one run
type Result struct {
	NoData    bool
	Corpus    *corpus.Corpus
	Selection *selection.Selection
	Topics    []topics.TopicTerms
	Records   []models.TopicTerm
	Saved     int
}

// Pipeline runs the topic-model selection pipeline
type Pipeline struct {
	config   Config
	selector *selection.Selector
	emitter  *emitter.Emitter
	logger   *slog.Logger
}

// New creates a new pipeline. A nil emitter skips persistence.
func New(config Config, selector *selection.Selector, emit *emitter.Emitter, logger *slog.Logger) *Pipeline {
	def := DefaultConfig()
	if config.NumTopics == 0 {
		config.NumTopics = def.NumTopics
	}
	if config.TopN <= 0 {
		config.TopN = def.TopN
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Pipeline{
		config:   config,
		selector: selector,
		emitter:  emit,
		logger:   logger,
	}
}

// Run builds the corpus, selects the most coherent model and emits its topic terms.
// Empty input is not an error: it returns a Result with NoData set and never touches the sink.
func (p *Pipeline) Run(ctx context.Context, docs []corpus.Document, rc RunContext) (*Result, error) {
	c, err := corpus.Build(docs)
	if errors.Is(err, corpus.ErrNoData) {
		p.logger.Info("no data", "merchant_name", rc.Merchant, "year", rc.Period.Year, "month", rc.Period.Month)
		return &Result{NoData: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build corpus: %w", err)
	}

	p.logger.Info("corpus built",
		"merchant_name", rc.Merchant,
		"documents", c.NumDocs(),
		"vocabulary", c.NumTerms(),
	)

	sel, err := p.selector.Select(ctx, c, p.config.NumTopics)
	if err != nil {
		return nil, fmt.Errorf("select model: %w", err)
	}

	ts := topics.Extract(sel.Selected.Model, c.Dictionary, p.config.TopN)
	for i, tt := range ts {
		p.logger.Debug("topic", "topic_cluster", i+1, "terms", tt.Ranked)
	}

	result := &Result{
		Corpus:    c,
		Selection: sel,
		Topics:    ts,
		Records:   emitter.Flatten(ts, rc.Merchant, rc.Period),
	}

	if p.emitter == nil {
		return result, nil
	}

	if rc.BeforeEmit != nil {
		if err := rc.BeforeEmit(ctx); err != nil {
			return result, fmt.Errorf("prepare sink: %w", err)
		}
	}

	result.Saved, err = p.emitter.Emit(ctx, result.Records)
	if err != nil {
		return result, fmt.Errorf("emit: %w", err)
	}
	return result, nil
}
