package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/config"
)

// ErrMissingAPIKey 没有配置模型的 API key
var ErrMissingAPIKey = errors.New("llm api key is missing")

// NewChatModel 根据配置创建对话模型
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (einomodel.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch cfg.Provider {
	case "", "openai":
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: config.Seconds(cfg.Timeout),
		})
		if err != nil {
			return nil, fmt.Errorf("init openai chat model: %w", err)
		}
		return cm, nil

	case "gemini":
		return NewGeminiChatModel(ctx, cfg.APIKey, cfg.Model)

	case "anthropic":
		return NewAnthropicChatModel(cfg.APIKey, cfg.BaseURL, cfg.Model), nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
