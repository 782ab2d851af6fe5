package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	sdk "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/utils"
)

const (
	defaultChatModel   = sdk.GPT4oMini
	defaultMaxTokens   = 150
	defaultTemperature = 0.2
	maxLogLength       = 200
)

type chatAPI interface {
	CreateChatCompletion(ctx context.Context, request sdk.ChatCompletionRequest) (sdk.ChatCompletionResponse, error)
}

// ExplainerOptions tune the completion request. Zero values select defaults,
// except Temperature where only nil does.
type ExplainerOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float32
	BaseURL     string
}

// Explainer asks an OpenAI chat model for a short match verdict.
type Explainer struct {
	client      chatAPI
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

func NewExplainer(apiKey string, opts ExplainerOptions, logger *zap.Logger) (*Explainer, error) {
	client, err := newClient(apiKey, opts.BaseURL)
	if err != nil {
		return nil, err
	}

	return newExplainer(client, opts, logger), nil
}

func newExplainer(client chatAPI, opts ExplainerOptions, logger *zap.Logger) *Explainer {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultChatModel
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	temperature := float32(defaultTemperature)
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Explainer{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (e *Explainer) Model() string { return e.model }

// requestTemperature maps 0 to the smallest positive float32, the request
// field is omitempty and a plain 0 would be dropped.
func (e *Explainer) requestTemperature() float32 {
	if e.temperature == 0 {
		return math.SmallestNonzeroFloat32
	}
	return e.temperature
}

func (e *Explainer) Explain(ctx context.Context, resumeText, jobText string) (string, error) {
	prompt := ai.UserPrompt(resumeText, jobText)

	e.logger.Debug("openai chat completion request",
		zap.String("prompt_preview", utils.TruncateForLog(prompt, maxLogLength)),
	)

	resp, err := e.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model: e.model,
		Messages: []sdk.ChatCompletionMessage{
			{Role: sdk.ChatMessageRoleSystem, Content: ai.SystemPrompt()},
			{Role: sdk.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: e.requestTemperature(),
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	e.logger.Debug("openai chat completion response",
		zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
	)

	text := ai.TrimExplanation(raw)
	if text == "" {
		return "", errors.New("openai returned no usable explanation")
	}

	return text, nil
}
