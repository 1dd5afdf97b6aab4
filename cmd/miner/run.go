package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/todmy/topic-miner/internal/coherence"
	"github.com/todmy/topic-miner/internal/emitter"
	"github.com/todmy/topic-miner/internal/job"
	"github.com/todmy/topic-miner/internal/lda"
	"github.com/todmy/topic-miner/internal/pipeline"
	"github.com/todmy/topic-miner/internal/preprocessing"
	"github.com/todmy/topic-miner/internal/selection"
	"github.com/todmy/topic-miner/internal/source"
	"github.com/todmy/topic-miner/internal/storage"
	"github.com/todmy/topic-miner/pkg/models"
)

var (
	runYear    int
	runMonth   int
	runDryRun  bool
	runReplace bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mine the topics of one month",
	Long: `Fetches the month's chat messages, trains one topic model per topic count
from 1 to model.num_topics, keeps the most coherent one and stores its topic terms.
Defaults to the current month.`,
	Args: cobra.NoArgs,
	RunE: runMine,
}

func init() {
	runCmd.Flags().IntVar(&runYear, "year", 0, "year to mine (default current year)")
	runCmd.Flags().IntVar(&runMonth, "month", 0, "month to mine, 1-12 (default current month)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "log the topics without writing to the database")
	runCmd.Flags().BoolVar(&runReplace, "replace", false, "delete the period's previous topic terms first")
	rootCmd.AddCommand(runCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	period := models.PeriodOf(time.Now())
	if runYear != 0 {
		period.Year = runYear
	}
	if runMonth != 0 {
		period.Month = runMonth
	}

	var store *storage.Store
	if !runDryRun || cfg.Source.Type == "postgres" {
		store, err = storage.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var src source.Source
	switch cfg.Source.Type {
	case "postgres":
		src = source.NewPostgresSource(store.Messages)
	default:
		src = source.NewCSVSource(cfg.Source.CSVPath, cfg.Source.FilterPeriod)
	}

	cleaner, err := preprocessing.NewCleaner(cfg.CleanerConfig(), logger)
	if err != nil {
		return err
	}
	scorer, err := coherence.NewScorer(cfg.ScorerConfig())
	if err != nil {
		return err
	}
	selector := selection.NewSelector(lda.NewTrainer(cfg.TrainerConfig(), logger), scorer, logger)

	var (
		emit  *emitter.Emitter
		terms storage.TopicTermRepository
		runs  storage.RunRepository
	)
	if !runDryRun {
		terms, runs = store.TopicTerms, store.Runs
		emit = emitter.New(terms, cfg.EmitterConfig(), logger)
	}

	p := pipeline.New(cfg.PipelineConfig(), selector, emit, logger)
	j := job.New(job.Config{ReplaceExisting: runReplace || cfg.Job.ReplaceExisting},
		src, cleaner, p, terms, runs, logger)

	out, err := j.Run(ctx, period)
	if err != nil {
		if errors.Is(err, lda.ErrTooManyTopics) || errors.Is(err, lda.ErrInvalidTopicCount) {
			return fmt.Errorf("%w (check model.num_topics)", err)
		}
		return err
	}

	if out.Run == nil {
		cmd.Printf("%d-%02d: nothing to mine (%d messages)\n", period.Year, period.Month, out.Messages)
		return nil
	}
	cmd.Printf("%d-%02d %s: %d topics, coherence %.4f, %d terms saved (run %s)\n",
		period.Year, period.Month, out.Merchant, out.Run.NumTopics, out.Run.Coherence, out.Saved, out.Run.ID)
	return nil
}
