package session

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/chat"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/config"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/engine"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/llm"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/summarizer"
)

// NewFromConfig 按配置组装引擎、概要生成器和问答助手。
// 模型在第一次生成概要或回答问题时才创建，缺少 API key 只影响这两步，不影响调研
func NewFromConfig(_ context.Context, cfg *config.Config) (*Session, error) {
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	sum, assistant := newLLMComponents(cfg)
	return New(eng, sum, assistant), nil
}

func newLLMComponents(cfg *config.Config) (*summarizer.Summarizer, *chat.Assistant) {
	client := newLLMClient(cfg)
	sum := summarizer.New(client, llm.Budget(cfg.Budget.SummaryChars), llm.Params{
		MaxTokens:   cfg.LLM.Summary.MaxTokens,
		Temperature: cfg.LLM.Summary.Temperature,
	})
	assistant := chat.New(client, llm.Budget(cfg.Budget.ChatChars), cfg.Budget.HistoryWindow, llm.Params{
		MaxTokens:   cfg.LLM.Chat.MaxTokens,
		Temperature: cfg.LLM.Chat.Temperature,
	})
	return sum, assistant
}

func newLLMClient(cfg *config.Config) *llm.Client {
	limiter := llm.NewLimiter(cfg.Concurrency.RPM, cfg.Concurrency.QPS)
	llmCfg := cfg.LLM
	return llm.NewLazyClient(func(ctx context.Context) (einomodel.BaseChatModel, error) {
		chatModel, err := llm.NewChatModel(ctx, llmCfg)
		if err != nil {
			return nil, fmt.Errorf("LLM 初始化失败: %w", err)
		}
		logger.Log.Infof("LLM 已初始化: provider=%s, model=%s", llmCfg.Provider, llmCfg.Model)
		if limiter != nil {
			logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", limiter.Limit(), limiter.Burst())
		}
		return chatModel, nil
	}, limiter)
}
