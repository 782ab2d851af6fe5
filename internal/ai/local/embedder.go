package local

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	DefaultURL     = "http://localhost:11434"
	DefaultModel   = "all-minilm"
	defaultTimeout = 60 * time.Second

	embedPath       = "/api/embed"
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "resume-screener"
)

// Config holds the connection settings of a local embedding server.
type Config struct {
	URL     string
	Model   string
	Timeout time.Duration
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `mapstructure:"model"`
	Embeddings [][]float32 `mapstructure:"embeddings"`
}

// Embedder talks to an Ollama-compatible embedding server running next to the
// screener, so resume text never leaves the host.
type Embedder struct {
	HTTPClient *http.Client

	url    string
	model  string
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Embedder {
	url := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if url == "" {
		url = DefaultURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		HTTPClient: &http.Client{Timeout: timeout},
		url:        url,
		model:      model,
		logger:     logger,
	}
}

func (e *Embedder) Name() string { return "local" }

func (e *Embedder) Model() string { return e.model }

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var response embedResponse
	if err := e.postJSON(ctx, e.url+embedPath, embedRequest{Model: e.model, Input: texts}, &response); err != nil {
		return nil, fmt.Errorf("local embeddings: %w", err)
	}

	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("local embeddings: got %d vectors for %d inputs", len(response.Embeddings), len(texts))
	}

	for i, vector := range response.Embeddings {
		if len(vector) == 0 {
			return nil, fmt.Errorf("local embeddings: empty vector at index %d", i)
		}
	}

	return response.Embeddings, nil
}

func (e *Embedder) postJSON(ctx context.Context, url string, payload, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = setHeaders(req)

	e.logger.Debug("make request", zap.String("url", req.URL.String()), zap.String("model", e.model))

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if msg, ok := raw["error"].(string); ok && msg != "" {
		return errors.New(msg)
	}

	return mapstructure.Decode(raw, target)
}

func setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("User-Agent", userAgent)

	return req
}
