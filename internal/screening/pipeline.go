package screening

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/explain"
	"github.com/spigell/resume-screener/internal/metrics"
)

const (
	defaultWorkers    = 4
	defaultConfigHint = "set OPENAI_API_KEY, GEMINI_API_KEY or USE_LOCAL_EMBEDDINGS=true"
)

// Options configure a Pipeline. Only Extractor is required; a nil Embedder is
// reported as a configuration error on every Screen call.
type Options struct {
	Embedder  ai.Embedder
	Extractor Extractor
	// Explainer defaults to the keyword heuristic.
	Explainer explain.Strategy
	// SkipExplain stops the run after ranking.
	SkipExplain bool
	Workers     int
	// ConfigHint is shown with the configuration error when no embedder is set.
	ConfigHint string
	// Progress is called as each stage starts.
	Progress func(State)
	Logger   *zap.Logger
}

// Pipeline screens resumes against a job description. It is read-only after
// construction and safe for concurrent use.
type Pipeline struct {
	embedder    ai.Embedder
	extractor   Extractor
	explainer   explain.Strategy
	skipExplain bool
	workers     int
	configHint  string
	progress    func(State)
	logger      *zap.Logger
}

func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	explainer := opts.Explainer
	if explainer == nil {
		explainer = explain.New(nil, logger)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	hint := strings.TrimSpace(opts.ConfigHint)
	if hint == "" {
		hint = defaultConfigHint
	}

	return &Pipeline{
		embedder:    opts.Embedder,
		extractor:   opts.Extractor,
		explainer:   explainer,
		skipExplain: opts.SkipExplain,
		workers:     workers,
		configHint:  hint,
		progress:    opts.Progress,
		logger:      logger,
	}
}

// Configured reports whether an embedding provider is available.
func (p *Pipeline) Configured() bool {
	return p.embedder != nil
}

// Screen runs the whole pipeline. The returned run is non-nil whenever the
// input was valid, including failed runs, so callers can inspect the state.
func (p *Pipeline) Screen(ctx context.Context, job string, docs []Document) (*Run, error) {
	job = strings.TrimSpace(job)
	if job == "" {
		return nil, ErrEmptyJob
	}

	run := newRun(job, docs)
	logger := p.logger.With(zap.String("run_id", run.ID.String()))

	if p.embedder == nil {
		err := &ConfigurationError{Reason: "no embedding provider configured", Hint: p.configHint}
		run.fail(err)
		metrics.ScreeningsTotal.WithLabelValues(string(StateFailed)).Inc()
		logger.Error("screening aborted", zap.Error(err))
		return run, err
	}

	if p.extractor == nil {
		err := &ConfigurationError{Reason: "no text extractor configured"}
		run.fail(err)
		metrics.ScreeningsTotal.WithLabelValues(string(StateFailed)).Inc()
		return run, err
	}

	run.Embedder = p.embedder.Name()
	metrics.CandidatesTotal.Add(float64(len(docs)))

	if len(docs) == 0 {
		run.State = StateDone
		metrics.ScreeningsTotal.WithLabelValues(string(StateDone)).Inc()
		logger.Info("nothing to screen", zap.String("reason", "no resumes supplied"))
		return run, nil
	}

	d := deps{
		docs:      docs,
		extractor: p.extractor,
		embedder:  p.embedder,
		explainer: p.explainer,
		workers:   p.workers,
		logger:    logger,
	}

	logger.Info("starting screening",
		zap.Int("resumes", len(docs)),
		zap.String("embedder", run.Embedder),
	)

	for _, s := range p.stages() {
		run.State = s.State()
		if p.progress != nil {
			p.progress(run.State)
		}

		started := time.Now()
		info, err := s.Apply(ctx, d, run)
		elapsed := time.Since(started)

		info.Name = s.Name()
		info.DurationMS = float64(elapsed.Microseconds()) / 1000
		run.Steps = append(run.Steps, info)
		metrics.StageDuration.WithLabelValues(s.Name()).Observe(elapsed.Seconds())

		logger.Info("pipeline step",
			zap.String("name", s.Name()),
			zap.Int("processed", info.Processed),
			zap.Int("failed", info.Failed),
			zap.Duration("took", elapsed),
		)

		if err != nil {
			run.fail(err)
			metrics.ScreeningsTotal.WithLabelValues(string(StateFailed)).Inc()
			logger.Error("screening failed", zap.String("stage", s.Name()), zap.Error(err))
			return run, err
		}
	}

	run.State = StateDone
	metrics.ScreeningsTotal.WithLabelValues(string(StateDone)).Inc()

	return run, nil
}

func (p *Pipeline) stages() []stage {
	steps := []stage{extractStage{}, embedStage{}, rankStage{}}
	if !p.skipExplain {
		steps = append(steps, explainStage{})
	}
	return steps
}

// IsConfigurationError reports whether err was caused by provider setup.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsEmbeddingError reports whether err aborted a run during embedding.
func IsEmbeddingError(err error) bool {
	var embErr *EmbeddingError
	return errors.As(err, &embErr)
}
