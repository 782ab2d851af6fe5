package gemini

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp     *genai.EmbedContentResponse
	err      error
	model    string
	contents []*genai.Content
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func TestEmbedderEmbedBatch(t *testing.T) {
	models := &fakeModels{resp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{1, 0}},
			{Values: []float32{0, 1}},
		},
	}}
	e := &Embedder{models: models, model: "text-embedding-004", logger: zap.NewNop()}

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 2 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}

	if models.model != "text-embedding-004" {
		t.Fatalf("unexpected model: %s", models.model)
	}

	if len(models.contents) != 2 || models.contents[0].Parts[0].Text != "a" {
		t.Fatalf("unexpected contents sent: %+v", models.contents)
	}
}

func TestEmbedderCountMismatch(t *testing.T) {
	models := &fakeModels{resp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}},
	}}
	e := &Embedder{models: models, model: "m", logger: zap.NewNop()}

	if _, err := e.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for count mismatch")
	}
}

func TestEmbedderPropagatesErrors(t *testing.T) {
	e := &Embedder{models: &fakeModels{err: errors.New("denied")}, model: "m", logger: zap.NewNop()}

	if _, err := e.Embed(context.Background(), "a"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbedderEmptyBatch(t *testing.T) {
	models := &fakeModels{}
	e := &Embedder{models: models, model: "m", logger: zap.NewNop()}

	vectors, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 0 {
		t.Fatalf("expected no vectors, got %d", len(vectors))
	}
	if models.contents != nil {
		t.Fatal("expected no api call for empty batch")
	}
}
