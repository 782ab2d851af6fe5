package ai

import (
	"context"
)

// Embedder turns text into fixed-length vectors. All vectors returned by one
// embedder share the same dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// Explainer writes a short natural-language verdict about how well a resume
// fits a job description.
type Explainer interface {
	Explain(ctx context.Context, resumeText, jobText string) (string, error)
}
