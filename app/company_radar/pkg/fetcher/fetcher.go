// Package fetcher 各数据源的抓取实现。
//
// 所有抓取都是尽力而为：网络错误、超时、解析失败或内容为空都会被吸收，
// 以 Succeeded=false 的结果返回给调用方，不会向上抛出错误。
package fetcher

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/config"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

// FinancialProvider 行情数据提供方
type FinancialProvider interface {
	Lookup(ctx context.Context, ticker string) (*model.FinancialSnapshot, error)
}

// Options 抓取参数
type Options struct {
	UserAgent       string
	WebsiteTimeout  time.Duration
	LogoTimeout     time.Duration
	MaxWebsiteChars int
}

// OptionsFromConfig 从配置构造抓取参数
func OptionsFromConfig(cfg config.FetchConfig) Options {
	return Options{
		UserAgent:       cfg.UserAgent,
		WebsiteTimeout:  config.Seconds(cfg.WebsiteTimeout),
		LogoTimeout:     config.Seconds(cfg.LogoTimeout),
		MaxWebsiteChars: cfg.MaxWebsiteChars,
	}
}

// Collector 汇集全部数据源的抓取器
type Collector struct {
	searcher search.Searcher
	finance  FinancialProvider
	opts     Options

	websiteClient *http.Client
	logoClient    *http.Client
}

// NewCollector 创建抓取器，finance 为 nil 时财务数据始终为空
func NewCollector(searcher search.Searcher, finance FinancialProvider, opts Options) *Collector {
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.WebsiteTimeout <= 0 {
		opts.WebsiteTimeout = 15 * time.Second
	}
	if opts.LogoTimeout <= 0 {
		opts.LogoTimeout = 5 * time.Second
	}
	if opts.MaxWebsiteChars <= 0 {
		opts.MaxWebsiteChars = 100000
	}
	return &Collector{
		searcher:      searcher,
		finance:       finance,
		opts:          opts,
		websiteClient: &http.Client{Timeout: opts.WebsiteTimeout},
		logoClient:    &http.Client{Timeout: opts.LogoTimeout},
	}
}

func (c *Collector) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return req, nil
}

// runSearch 执行一次搜索，失败时返回 nil
func (c *Collector) runSearch(ctx context.Context, kind model.SourceKind, s model.Subject, req *search.Request) []search.Result {
	if c.searcher == nil {
		return nil
	}
	resp, err := c.searcher.Search(ctx, req)
	if err != nil {
		logger.ForSource(kind, s.Name).Warnf("搜索失败 [%s]: %v", req.Query, err)
		return nil
	}
	if resp == nil {
		return nil
	}
	return resp.Results
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func joinSnippets(items []string, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	return strings.Join(items, "\n\n")
}
