package screening

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/explain"
	"github.com/spigell/resume-screener/internal/metrics"
	"github.com/spigell/resume-screener/internal/similarity"
)

// Extractor turns a document into plain text.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (string, error)
}

// stage is a single step of the pipeline.
type stage interface {
	Name() string
	State() State
	Apply(ctx context.Context, deps deps, run *Run) (Step, error)
}

// deps aggregates collaborators shared across all stages.
type deps struct {
	docs      []Document
	extractor Extractor
	embedder  ai.Embedder
	explainer explain.Strategy
	workers   int
	logger    *zap.Logger
}

type extractStage struct{}

func (extractStage) Name() string { return "extract" }

func (extractStage) State() State { return StateExtracting }

func (extractStage) Apply(ctx context.Context, d deps, run *Run) (Step, error) {
	var g errgroup.Group
	g.SetLimit(d.workers)

	failed := make([]bool, len(d.docs))
	for i, doc := range d.docs {
		g.Go(func() error {
			text, err := safeExtract(ctx, d.extractor, doc)
			if err != nil {
				d.logger.Warn("extracting text failed, using empty text",
					zap.String("resume", doc.Name),
					zap.Error(err),
				)
				failed[i] = true
				text = ""
			}
			run.Candidates[i].Text = text
			run.Candidates[i].ExtractionFailed = failed[i]
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, f := range failed {
		if f {
			count++
		}
	}
	metrics.ExtractionFailures.Add(float64(count))

	return Step{Processed: len(d.docs) - count, Failed: count}, nil
}

func safeExtract(ctx context.Context, extractor Extractor, doc Document) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("extractor panicked: %v", r)
		}
	}()

	return extractor.Extract(ctx, doc)
}

type embedStage struct{}

func (embedStage) Name() string { return "embed" }

func (embedStage) State() State { return StateEmbedding }

func (embedStage) Apply(ctx context.Context, d deps, run *Run) (Step, error) {
	jobVector, err := d.embedder.Embed(ctx, run.Job.Text)
	if err != nil {
		return Step{Failed: 1}, &EmbeddingError{Stage: "job description", Err: err}
	}
	run.Job.Embedding = jobVector

	texts := make([]string, 0, run.Len())
	indexes := make([]int, 0, run.Len())
	for i, candidate := range run.Candidates {
		if strings.TrimSpace(candidate.Text) == "" {
			candidate.Embedding = []float32{}
			continue
		}
		texts = append(texts, candidate.Text)
		indexes = append(indexes, i)
	}

	if len(texts) == 0 {
		return Step{Processed: 1}, nil
	}

	vectors, err := d.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return Step{Processed: 1, Failed: len(texts)}, &EmbeddingError{Stage: "resumes", Err: err}
	}

	if len(vectors) != len(texts) {
		return Step{Processed: 1, Failed: len(texts)}, &EmbeddingError{
			Stage: "resumes",
			Err:   fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(texts)),
		}
	}

	for n, i := range indexes {
		run.Candidates[i].Embedding = vectors[n]
	}

	return Step{Processed: len(texts) + 1}, nil
}

type rankStage struct{}

func (rankStage) Name() string { return "rank" }

func (rankStage) State() State { return StateRanking }

// Apply reorders run candidates by score. Items are keyed by input position so
// duplicate file names stay distinct.
func (rankStage) Apply(_ context.Context, _ deps, run *Run) (Step, error) {
	items := make([]similarity.Item, len(run.Candidates))
	for i, candidate := range run.Candidates {
		items[i] = similarity.Item{ID: strconv.Itoa(i), Vector: candidate.Embedding}
	}

	scored := similarity.Rank(run.Job.Embedding, items)

	ranked := make([]*Candidate, 0, len(scored))
	for _, s := range scored {
		i, err := strconv.Atoi(s.ID)
		if err != nil {
			return Step{}, fmt.Errorf("unexpected item id %q: %w", s.ID, err)
		}
		candidate := run.Candidates[i]
		candidate.Score = s.Score
		ranked = append(ranked, candidate)
	}
	run.Candidates = ranked

	return Step{Processed: len(ranked)}, nil
}

type explainStage struct{}

func (explainStage) Name() string { return "explain" }

func (explainStage) State() State { return StateExplaining }

func (explainStage) Apply(ctx context.Context, d deps, run *Run) (Step, error) {
	fallbacks := 0
	for _, candidate := range run.Candidates {
		result := d.explainer.Explain(ctx, candidate.Text, run.Job.Text)
		candidate.Explanation = result.Text
		candidate.ExplanationSource = result.Source

		metrics.Explanations.WithLabelValues(string(result.Source)).Inc()
		if result.Err != nil {
			fallbacks++
			metrics.ExplanationFallbacks.Inc()
			d.logger.Debug("explanation fell back to heuristic",
				zap.String("resume", candidate.ID),
				zap.Error(result.Err),
			)
		}
	}
	run.Explained = true

	return Step{Processed: run.Len() - fallbacks, Failed: fallbacks}, nil
}
