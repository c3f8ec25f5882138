package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/config"
	crLogger "github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/session"
	"github.com/iWorld-y/company_radar/app/display/internal/conf"
)

// NewRadarSession 初始化 company_radar 会话
func NewRadarSession(c *conf.Radar, logger log.Logger) (*session.Session, func(), error) {
	cfg := ToConfig(c)

	// 初始化日志
	if err := crLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init company_radar logger: %v", err)
		_ = crLogger.InitLogger("info", "") // 降级处理
	}

	sess, err := session.NewFromConfig(context.Background(), cfg)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init research session: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("Cleaning up company_radar session")
	}
	return sess, cleanup, nil
}

// ToConfig 将 internal/conf.Radar 转换为 pkg/config.Config，缺失的部分使用默认值
func ToConfig(c *conf.Radar) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		c = &conf.Radar{}
	}

	if l := c.Llm; l != nil {
		cfg.LLM = config.LLMConfig{
			Provider: l.Provider,
			BaseURL:  l.BaseUrl,
			APIKey:   l.ApiKey,
			Model:    l.Model,
			Timeout:  int(l.Timeout),
			Summary:  toGenerate(l.Summary),
			Chat:     toGenerate(l.Chat),
		}
	}
	if s := c.Search; s != nil {
		cfg.Search.Provider = s.Provider
		if s.Google != nil {
			cfg.Search.Google.BaseURL = s.Google.BaseUrl
		}
		if s.Tavily != nil {
			cfg.Search.Tavily.APIKey = s.Tavily.ApiKey
		}
		if s.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{
				BaseURL: s.Searxng.BaseUrl,
				Timeout: int(s.Searxng.Timeout),
			}
		}
	}
	if f := c.Fetch; f != nil {
		cfg.Fetch = config.FetchConfig{
			UserAgent:       f.UserAgent,
			SearchTimeout:   int(f.SearchTimeout),
			WebsiteTimeout:  int(f.WebsiteTimeout),
			LogoTimeout:     int(f.LogoTimeout),
			MaxWebsiteChars: int(f.MaxWebsiteChars),
			Parallel:        f.Parallel,
		}
	}
	if b := c.Budget; b != nil {
		cfg.Budget = config.BudgetConfig{
			SummaryChars:  int(b.SummaryChars),
			ChatChars:     int(b.ChatChars),
			HistoryWindow: int(b.HistoryWindow),
		}
	}
	if f := c.Finance; f != nil {
		cfg.Finance = config.FinanceConfig{BaseURL: f.BaseUrl, Timeout: int(f.Timeout)}
	}
	if l := c.Log; l != nil {
		cfg.Log = config.LogConfig{Level: l.Level, File: l.File}
	}
	if cc := c.Concurrency; cc != nil {
		cfg.Concurrency = config.ConcurrencyConfig{QPS: int(cc.Qps), RPM: int(cc.Rpm)}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg
}

func toGenerate(g *conf.Generate) config.GenerateConfig {
	if g == nil {
		return config.GenerateConfig{}
	}
	return config.GenerateConfig{MaxTokens: int(g.MaxTokens), Temperature: g.Temperature}
}
