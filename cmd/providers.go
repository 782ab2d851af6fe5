package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/ai/local"
	"github.com/spigell/resume-screener/internal/ai/openai"
	"github.com/spigell/resume-screener/internal/explain"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/secrets"
)

const (
	providerOpenAI    = "openai"
	providerGemini    = "gemini"
	providerLocal     = "local"
	providerHeuristic = "heuristic"

	configHint = "set OPENAI_API_KEY, GEMINI_API_KEY or USE_LOCAL_EMBEDDINGS=true in the environment or a .env file"
)

func openAIKeySource(cfg *Config) secrets.Source {
	src := secrets.Source{Name: "openai api key", Env: "OPENAI_API_KEY"}
	if cfg.Embedding.OpenAI != nil {
		src.Value = cfg.Embedding.OpenAI.APIKey
		src.File = cfg.Embedding.OpenAI.APIKeyFile
	}
	return src
}

func geminiKeySource(cfg *Config) secrets.Source {
	src := secrets.Source{Name: "gemini api key", Env: "GEMINI_API_KEY"}
	if cfg.Explain.Gemini != nil {
		src.Value = cfg.Explain.Gemini.APIKey
		src.File = cfg.Explain.Gemini.APIKeyFile
	}
	return src
}

func geminiEmbeddingKeySource(cfg *Config) secrets.Source {
	ec := cfg.Embedding.Gemini
	if ec == nil || (strings.TrimSpace(ec.APIKey) == "" && strings.TrimSpace(ec.APIKeyFile) == "") {
		return geminiKeySource(cfg)
	}
	return secrets.Source{Name: "gemini embedding api key", Value: ec.APIKey, File: ec.APIKeyFile, Env: "GEMINI_API_KEY"}
}

// embeddingProvider resolves which embedder to build. An empty result means
// nothing is configured.
func embeddingProvider(cfg *Config) string {
	provider := strings.TrimSpace(strings.ToLower(cfg.Embedding.Provider))
	if provider != "" {
		return provider
	}

	switch {
	case cfg.Embedding.LocalEnabled():
		return providerLocal
	case secrets.Configured(openAIKeySource(cfg)):
		return providerOpenAI
	case secrets.Configured(geminiEmbeddingKeySource(cfg)):
		return providerGemini
	default:
		return ""
	}
}

// explainProvider resolves which generative explainer to build. The heuristic
// is used when no key is available.
func explainProvider(cfg *Config) string {
	provider := strings.TrimSpace(strings.ToLower(cfg.Explain.Provider))
	if provider != "" {
		return provider
	}

	switch {
	case secrets.Configured(openAIKeySource(cfg)):
		return providerOpenAI
	case secrets.Configured(geminiKeySource(cfg)):
		return providerGemini
	default:
		return providerHeuristic
	}
}

func newEmbedder(ctx context.Context, cfg *Config, log *zap.Logger) (ai.Embedder, error) {
	switch provider := embeddingProvider(cfg); provider {
	case "":
		return nil, nil
	case providerLocal:
		lc := local.Config{}
		if cfg.Embedding.Local != nil {
			lc.URL = cfg.Embedding.Local.URL
			lc.Model = cfg.Embedding.Local.Model
			if raw := strings.TrimSpace(cfg.Embedding.Local.Timeout); raw != "" {
				timeout, err := time.ParseDuration(raw)
				if err != nil {
					return nil, fmt.Errorf("parsing embedding.local.timeout: %w", err)
				}
				lc.Timeout = timeout
			}
		}
		model := lc.Model
		if strings.TrimSpace(model) == "" {
			model = local.DefaultModel
		}
		return local.New(lc, logger.WithProvider(log, providerLocal, model)), nil
	case providerOpenAI:
		key, err := secrets.Load(openAIKeySource(cfg))
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.openai.api-key-file or OPENAI_API_KEY)", err)
		}
		var model, baseURL string
		if cfg.Embedding.OpenAI != nil {
			model = cfg.Embedding.OpenAI.Model
			baseURL = cfg.Embedding.OpenAI.BaseURL
		}
		embedder, err := openai.NewEmbedder(key, model, baseURL, logger.WithProvider(log, providerOpenAI, model))
		if err != nil {
			return nil, err
		}
		return embedder, nil
	case providerGemini:
		key, err := secrets.Load(geminiEmbeddingKeySource(cfg))
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		var model string
		if cfg.Embedding.Gemini != nil {
			model = cfg.Embedding.Gemini.Model
		}
		embedder, err := gemini.NewEmbedder(ctx, key, model, logger.WithProvider(log, providerGemini, model))
		if err != nil {
			return nil, err
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

func newExplainer(ctx context.Context, cfg *Config, log *zap.Logger) (ai.Explainer, error) {
	switch provider := explainProvider(cfg); provider {
	case providerHeuristic, "none":
		return nil, nil
	case providerOpenAI:
		key, err := secrets.Load(openAIKeySource(cfg))
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.openai.api-key-file or OPENAI_API_KEY)", err)
		}
		opts := openai.ExplainerOptions{}
		if cfg.Embedding.OpenAI != nil {
			opts.BaseURL = cfg.Embedding.OpenAI.BaseURL
		}
		if oc := cfg.Explain.OpenAI; oc != nil {
			opts.Model = oc.Model
			opts.MaxTokens = oc.MaxTokens
			opts.Temperature = oc.Temperature
		}
		explainer, err := openai.NewExplainer(key, opts, logger.WithProvider(log, providerOpenAI, opts.Model))
		if err != nil {
			return nil, err
		}
		return explainer, nil
	case providerGemini:
		key, err := secrets.Load(geminiKeySource(cfg))
		if err != nil {
			return nil, fmt.Errorf("%w (set explain.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		gc := cfg.Explain.Gemini
		if gc == nil {
			gc = &GeminiExplainConfig{}
		}

		genLogger := logger.WithFields(
			logger.WithProvider(log, providerGemini, gc.Model),
			zap.Int("ai_retry_attempts", gc.MaxRetries),
		)

		generator, err := gemini.NewGenerator(ctx, key, gc.Model, gc.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}

		return gemini.NewExplainer(generator, gc.MaxLogLength, logger.WithProvider(log, providerGemini, generator.Model())), nil
	default:
		return nil, fmt.Errorf("unsupported explain provider: %s", provider)
	}
}

type pipelineOptions struct {
	skipExplain bool
	progress    func(screening.State)
}

// newPipeline wires providers from config. A missing embedder is not an error
// here; the pipeline reports it on use so the web form can show it inline.
func newPipeline(ctx context.Context, cfg *Config, log *zap.Logger, opts pipelineOptions) (*screening.Pipeline, error) {
	embedder, err := newEmbedder(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}

	if embedder == nil {
		log.Warn("no embedding provider configured", zap.String("hint", configHint))
	} else {
		log.Info("embedding provider ready", zap.String("provider", embedder.Name()))
	}

	var strategy explain.Strategy
	if !opts.skipExplain {
		generative, err := newExplainer(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("building explainer: %w", err)
		}
		if generative == nil {
			log.Info("explanations use keyword heuristic", zap.String("reason", "no generative provider configured"))
		}
		strategy = explain.New(generative, log)
	}

	return screening.New(screening.Options{
		Embedder:    embedder,
		Extractor:   extract.NewPDF(),
		Explainer:   strategy,
		SkipExplain: opts.skipExplain,
		Workers:     cfg.Workers,
		ConfigHint:  configHint,
		Progress:    opts.progress,
		Logger:      log,
	}), nil
}
