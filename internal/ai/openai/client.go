package openai

import (
	"errors"
	"strings"

	sdk "github.com/sashabaranov/go-openai"
)

func newClient(apiKey, baseURL string) (*sdk.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	cfg := sdk.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return sdk.NewClientWithConfig(cfg), nil
}
