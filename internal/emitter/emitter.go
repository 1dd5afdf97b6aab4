// Package emitter flattens extracted topics into records and hands them to a sink.
package emitter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/todmy/topic-miner/internal/topics"
	"github.com/todmy/topic-miner/pkg/models"
)

// Sink persists topic term records one at a time
type Sink interface {
	SaveTopicTerm(ctx context.Context, term models.TopicTerm) error
}

// Config holds emitter settings
type Config struct {
	WritesPerSecond float64 // 0 disables rate limiting
	Burst           int
}

// Emitter writes topic term records to a sink
type Emitter struct {
	sink    Sink
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a new emitter
func New(sink Sink, config Config, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var limiter *rate.Limiter
	if config.WritesPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.WritesPerSecond), burst)
	}

	return &Emitter{sink: sink, limiter: limiter, logger: logger}
}

// Flatten turns per-topic terms into records. Topic indexes are 1-based positions and
// words keep their ranked order inside each topic.
func Flatten(ts []topics.TopicTerms, merchant string, period models.Period) []models.TopicTerm {
	var records []models.TopicTerm
	for i, tt := range ts {
		for _, term := range tt.Ranked {
			records = append(records, models.TopicTerm{
				TopicCluster: i + 1,
				Word:         term.Word,
				Score:        term.Weight,
				MerchantName: merchant,
				Year:         period.Year,
				Month:        period.Month,
			})
		}
	}
	return records
}

// Emit logs and saves every record in order. It stops at the first failed write
// and returns how many records were saved before it.
func (e *Emitter) Emit(ctx context.Context, records []models.TopicTerm) (int, error) {
	for i, rec := range records {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return i, err
			}
		}

		e.logger.Info("topic term",
			"topic_cluster", rec.TopicCluster,
			"word", rec.Word,
			"score", rec.Score,
			"merchant_name", rec.MerchantName,
			"year", rec.Year,
			"month", rec.Month,
		)

		if err := e.sink.SaveTopicTerm(ctx, rec); err != nil {
			return i, fmt.Errorf("save topic %d word %q: %w", rec.TopicCluster, rec.Word, err)
		}
	}
	return len(records), nil
}
