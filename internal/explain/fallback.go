package explain

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
)

// Source tells where an explanation came from.
type Source string

const (
	SourceGenerative Source = "generative"
	SourceHeuristic  Source = "heuristic"
)

// Result is an explanation together with its origin.
type Result struct {
	Text   string
	Source Source
	// Err holds the generative failure that caused a fallback, if any.
	Err error
}

// Strategy picks between a generative provider and the keyword heuristic.
type Strategy interface {
	Explain(ctx context.Context, resumeText, jobText string) Result
}

// TryGenerative asks the generative provider first and falls back to the
// heuristic when the provider is absent, fails or returns nothing.
type TryGenerative struct {
	generative ai.Explainer
	fallback   *Heuristic
	logger     *zap.Logger
}

// HeuristicOnly always answers with the keyword heuristic.
type HeuristicOnly struct {
	heuristic *Heuristic
}

// New returns the strategy matching the configured provider. A nil generative
// explainer selects the heuristic alone.
func New(generative ai.Explainer, logger *zap.Logger) Strategy {
	if generative == nil {
		return &HeuristicOnly{heuristic: NewHeuristic()}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &TryGenerative{
		generative: generative,
		fallback:   NewHeuristic(),
		logger:     logger,
	}
}

func (h *HeuristicOnly) Explain(ctx context.Context, resumeText, jobText string) Result {
	text, _ := h.heuristic.Explain(ctx, resumeText, jobText)
	return Result{Text: text, Source: SourceHeuristic}
}

func (t *TryGenerative) Explain(ctx context.Context, resumeText, jobText string) Result {
	text, err := t.generative.Explain(ctx, resumeText, jobText)
	if err == nil && strings.TrimSpace(text) != "" {
		return Result{Text: text, Source: SourceGenerative}
	}

	if err == nil {
		err = errEmptyExplanation
	}

	t.logger.Warn("generative explanation failed, using keyword heuristic", zap.Error(err))

	fallback, _ := t.fallback.Explain(ctx, resumeText, jobText)
	return Result{Text: fallback, Source: SourceHeuristic, Err: err}
}
