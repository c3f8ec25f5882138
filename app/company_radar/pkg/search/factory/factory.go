package factory

import (
	"fmt"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/config"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/google"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/searxng"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	timeout := config.Seconds(cfg.Fetch.SearchTimeout)

	switch cfg.Search.Provider {
	case "", "google":
		return google.NewClient(cfg.Search.Google.BaseURL, cfg.Fetch.UserAgent, timeout), nil

	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Search.Tavily.APIKey, "", timeout), nil

	case "searxng":
		if cfg.Search.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout, cfg.Fetch.UserAgent), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Search.Provider)
	}
}
