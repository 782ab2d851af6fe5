package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sdk "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultEmbeddingModel = string(sdk.SmallEmbedding3)

type embeddingsAPI interface {
	CreateEmbeddings(ctx context.Context, conv sdk.EmbeddingRequestConverter) (sdk.EmbeddingResponse, error)
}

// Embedder requests embeddings from the OpenAI embeddings endpoint.
type Embedder struct {
	client embeddingsAPI
	model  sdk.EmbeddingModel
	logger *zap.Logger
}

// NewEmbedder builds an embedder for the given model. An empty baseURL keeps
// the public OpenAI endpoint.
func NewEmbedder(apiKey, model, baseURL string, logger *zap.Logger) (*Embedder, error) {
	client, err := newClient(apiKey, baseURL)
	if err != nil {
		return nil, err
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{client: client, model: sdk.EmbeddingModel(model), logger: logger}, nil
}

func (e *Embedder) Name() string { return "openai" }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch sends all texts in one request and returns vectors in input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("openai embeddings request", zap.Int("inputs", len(texts)))

	resp, err := e.client.CreateEmbeddings(ctx, sdk.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, item := range data {
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("openai returned an empty embedding at index %d", item.Index)
		}
		vectors[i] = item.Embedding
	}

	return vectors, nil
}
