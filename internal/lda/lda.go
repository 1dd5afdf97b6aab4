// Package lda trains Latent Dirichlet Allocation topic models with online variational Bayes.
package lda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/sync/errgroup"

	"github.com/todmy/topic-miner/internal/corpus"
)

var (
	ErrInvalidTopicCount = errors.New("topic count must be at least 1")
	ErrTooManyTopics     = errors.New("topic count exceeds vocabulary size")
)

// Config holds training parameters
type Config struct {
	Passes         int     // full sweeps over the corpus
	Iterations     int     // max variational iterations per document
	ChunkSize      int     // documents per online update
	Workers        int     // goroutines sharing the E-step of a chunk
	Decay          float64 // kappa, forgetting rate of old lambda
	Offset         float64 // tau0, slows down early iterations
	GammaThreshold float64 // per-document convergence threshold
	Seed           uint64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Passes:         2,
		Iterations:     50,
		ChunkSize:      2000,
		Workers:        runtime.NumCPU(),
		Decay:          0.5,
		Offset:         1.0,
		GammaThreshold: 0.001,
		Seed:           1,
	}
}

// Trainer fits topic models over a weighted corpus
type Trainer struct {
	config Config
	logger *slog.Logger
}

// NewTrainer creates a new trainer, filling zero config values with defaults
func NewTrainer(config Config, logger *slog.Logger) *Trainer {
	def := DefaultConfig()
	if config.Passes <= 0 {
		config.Passes = def.Passes
	}
	if config.Iterations <= 0 {
		config.Iterations = def.Iterations
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = def.ChunkSize
	}
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.Decay <= 0 {
		config.Decay = def.Decay
	}
	if config.Offset <= 0 {
		config.Offset = def.Offset
	}
	if config.GammaThreshold <= 0 {
		config.GammaThreshold = def.GammaThreshold
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Trainer{config: config, logger: logger}
}

// Config returns the effective training configuration
func (t *Trainer) Config() Config {
	return t.config
}

// Train fits a model with k topics over the TF-IDF weighted corpus.
// The corpus is not modified.
func (t *Trainer) Train(ctx context.Context, c *corpus.Corpus, k int) (*Model, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopicCount, k)
	}
	numTerms := c.NumTerms()
	if k > numTerms {
		return nil, fmt.Errorf("%w: %d topics for %d distinct tokens", ErrTooManyTopics, k, numTerms)
	}

	m := newModel(k, numTerms)
	t.initLambda(m)

	docs := c.Weighted
	numDocs := len(docs)
	chunkSize := t.config.ChunkSize
	updates := 0

	for pass := 0; pass < t.config.Passes; pass++ {
		for start := 0; start < numDocs; start += chunkSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			end := min(start+chunkSize, numDocs)
			sstats, err := t.estep(ctx, m, docs[start:end], start, pass)
			if err != nil {
				return nil, err
			}

			rho := math.Pow(t.config.Offset+float64(pass)+float64(updates)/float64(chunkSize), -t.config.Decay)
			m.blend(rho, float64(numDocs)/float64(end-start), sstats)
			updates += end - start

			t.logger.Debug("lda update",
				"topics", k,
				"pass", pass+1,
				"docs", end-start,
				"rho", rho,
			)
		}
	}

	return m, nil
}

// initLambda draws the initial topic-word parameters from Gamma(100, 1/100)
func (t *Trainer) initLambda(m *Model) {
	g := distuv.Gamma{
		Alpha: 100,
		Beta:  100,
		Src:   rand.NewPCG(t.config.Seed, uint64(m.numTopics)),
	}
	for topic := 0; topic < m.numTopics; topic++ {
		row := m.lambda.RawRowView(topic)
		for w := range row {
			row[w] = g.Rand()
		}
	}
	m.updateExpElogbeta()
}

// estep runs document inference for one chunk and returns its sufficient statistics.
// Documents are split into contiguous ranges, one per worker.
func (t *Trainer) estep(ctx context.Context, m *Model, docs []corpus.WeightedVector, offset, pass int) (*mat.Dense, error) {
	workers := min(t.config.Workers, len(docs))
	partials := make([]*mat.Dense, workers)
	per := (len(docs) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		lo := w * per
		hi := min(lo+per, len(docs))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			sstats := mat.NewDense(m.numTopics, m.numTerms, nil)
			for i := lo; i < hi; i++ {
				if i%64 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				t.inferDocument(m, docs[i], t.docSource(pass, offset+i), sstats)
			}
			partials[w] = sstats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sstats := mat.NewDense(m.numTopics, m.numTerms, nil)
	for _, p := range partials {
		if p != nil {
			sstats.Add(sstats, p)
		}
	}
	sstats.MulElem(sstats, m.expElogbeta)
	return sstats, nil
}

// docSource seeds per-document randomness so results do not depend on the worker count
func (t *Trainer) docSource(pass, doc int) rand.Source {
	return rand.NewPCG(t.config.Seed, uint64(pass)<<40|uint64(doc))
}

// inferDocument fits the variational topic proportions of one document and
// accumulates its contribution into sstats. It returns the final gamma.
func (t *Trainer) inferDocument(m *Model, doc corpus.WeightedVector, src rand.Source, sstats *mat.Dense) []float64 {
	k := m.numTopics
	gamma := make([]float64, k)
	if len(doc) == 0 {
		copy(gamma, m.alpha)
		return gamma
	}

	g := distuv.Gamma{Alpha: 100, Beta: 100, Src: src}
	for i := range gamma {
		gamma[i] = g.Rand()
	}

	expElogtheta := make([]float64, k)
	dirichletExpectationExp(gamma, expElogtheta)

	phinorm := make([]float64, len(doc))
	updatePhinorm(m, doc, expElogtheta, phinorm)

	lastGamma := make([]float64, k)
	for it := 0; it < t.config.Iterations; it++ {
		copy(lastGamma, gamma)

		for topic := 0; topic < k; topic++ {
			beta := m.expElogbeta.RawRowView(topic)
			dot := 0.0
			for j, e := range doc {
				dot += e.Weight / phinorm[j] * beta[e.ID]
			}
			gamma[topic] = m.alpha[topic] + expElogtheta[topic]*dot
		}
		dirichletExpectationExp(gamma, expElogtheta)
		updatePhinorm(m, doc, expElogtheta, phinorm)

		if meanAbsDiff(gamma, lastGamma) < t.config.GammaThreshold {
			break
		}
	}

	if sstats != nil {
		for topic := 0; topic < k; topic++ {
			row := sstats.RawRowView(topic)
			for j, e := range doc {
				row[e.ID] += expElogtheta[topic] * e.Weight / phinorm[j]
			}
		}
	}
	return gamma
}

// phiEpsilon keeps the per-word normalizer away from zero
const phiEpsilon = 2.220446049250313e-16

func updatePhinorm(m *Model, doc corpus.WeightedVector, expElogtheta, phinorm []float64) {
	for j, e := range doc {
		sum := 0.0
		for topic, theta := range expElogtheta {
			sum += theta * m.expElogbeta.At(topic, e.ID)
		}
		phinorm[j] = sum + phiEpsilon
	}
}

func meanAbsDiff(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a))
}
