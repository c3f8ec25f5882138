// Package engine 按固定顺序调用全部数据源，生成一次调研的聚合结果。
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/config"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/fetcher"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search/factory"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/yahoo"
)

// Sources 全部数据源抓取器，由 fetcher.Collector 实现
type Sources interface {
	ResolveWebsite(ctx context.Context, s dm.Subject) string
	WebsiteContent(ctx context.Context, s dm.Subject, url string) dm.SourceResult
	Logo(ctx context.Context, s dm.Subject, websiteURL string) dm.SourceResult
	News(ctx context.Context, s dm.Subject) dm.SourceResult
	Professional(ctx context.Context, s dm.Subject) dm.SourceResult
	Social(ctx context.Context, s dm.Subject) dm.SourceResult
	Reviews(ctx context.Context, s dm.Subject) dm.SourceResult
	Financial(ctx context.Context, s dm.Subject) *dm.FinancialSnapshot
}

var _ Sources = (*fetcher.Collector)(nil)

// ProgressCallback 每完成一个数据源回调一次
type ProgressCallback func(kind dm.SourceKind, done, total int)

// Engine 聚合引擎
type Engine struct {
	sources  Sources
	parallel bool
	now      func() time.Time
}

// Option 引擎选项
type Option func(*Engine)

// WithParallel 并发抓取，结果仍按固定顺序组装
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.parallel = parallel
	}
}

// WithClock 替换时间来源
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New 使用给定的数据源创建引擎
func New(sources Sources, opts ...Option) *Engine {
	e := &Engine{sources: sources, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngine 根据配置组装搜索、行情客户端和抓取器
func NewEngine(cfg *config.Config) (*Engine, error) {
	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	finance := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Finance.BaseURL),
		yahoo.WithTimeout(config.Seconds(cfg.Finance.Timeout)),
		yahoo.WithUserAgent(cfg.Fetch.UserAgent),
	)
	collector := fetcher.NewCollector(searcher, finance, fetcher.OptionsFromConfig(cfg.Fetch))
	return New(collector, WithParallel(cfg.Fetch.Parallel)), nil
}

// RunOptions 运行选项
type RunOptions struct {
	ProgressCallback ProgressCallback
}

// collected 各数据源的原始结果，按 Kind 下标存放
type collected struct {
	websiteURL string
	results    [len(fetchOrder)]dm.SourceResult
	financial  *dm.FinancialSnapshot
}

// fetchOrder 固定抓取顺序
var fetchOrder = [...]dm.SourceKind{
	dm.KindWebsite, dm.KindLogo, dm.KindNews, dm.KindProfessional, dm.KindSocial, dm.KindReviews, dm.KindFinancial,
}

// Research 调研一个公司。单个数据源失败或 panic 都不会影响其他数据源
func (e *Engine) Research(ctx context.Context, subject dm.Subject, opts RunOptions) (*dm.AggregateRecord, error) {
	subject = subject.Normalize()
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	logger.Log.Infof("开始调研公司 [%s]", subject.Name)

	p := &progress{total: len(fetchOrder), cb: opts.ProgressCallback}
	c := &collected{}
	if e.parallel {
		e.collectParallel(ctx, subject, c, p)
	} else {
		e.collectSequential(ctx, subject, c, p)
	}

	record := &dm.AggregateRecord{Subject: subject, WebsiteURL: c.websiteURL}
	for _, k := range fetchOrder {
		if k == dm.KindFinancial {
			record.SetFinancial(c.financial)
			continue
		}
		record.Set(c.results[k])
	}
	record.Finalize(e.now())

	logger.Log.Infof("公司 [%s] 调研完成，成功数据源 %d/%d", subject.Name, record.SucceededCount(), len(fetchOrder))
	return record, nil
}

func (e *Engine) collectSequential(ctx context.Context, s dm.Subject, c *collected, p *progress) {
	e.website(ctx, s, c, p)
	e.logo(ctx, s, c, p)
	e.searchSource(ctx, s, dm.KindNews, e.sources.News, c, p)
	e.searchSource(ctx, s, dm.KindProfessional, e.sources.Professional, c, p)
	e.searchSource(ctx, s, dm.KindSocial, e.sources.Social, c, p)
	e.searchSource(ctx, s, dm.KindReviews, e.sources.Reviews, c, p)
	e.financial(ctx, s, c, p)
}

// collectParallel logo 依赖官网地址，所以与官网在同一个 goroutine 中串行
func (e *Engine) collectParallel(ctx context.Context, s dm.Subject, c *collected, p *progress) {
	var g errgroup.Group
	g.Go(func() error {
		e.website(ctx, s, c, p)
		e.logo(ctx, s, c, p)
		return nil
	})
	for _, item := range []struct {
		kind dm.SourceKind
		fn   func(context.Context, dm.Subject) dm.SourceResult
	}{
		{dm.KindNews, e.sources.News},
		{dm.KindProfessional, e.sources.Professional},
		{dm.KindSocial, e.sources.Social},
		{dm.KindReviews, e.sources.Reviews},
	} {
		g.Go(func() error {
			e.searchSource(ctx, s, item.kind, item.fn, c, p)
			return nil
		})
	}
	g.Go(func() error {
		e.financial(ctx, s, c, p)
		return nil
	})
	_ = g.Wait()
}

func (e *Engine) website(ctx context.Context, s dm.Subject, c *collected, p *progress) {
	c.results[dm.KindWebsite] = dm.Failed(dm.KindWebsite)
	guard(s, dm.KindWebsite, func() {
		c.websiteURL = e.sources.ResolveWebsite(ctx, s)
		c.results[dm.KindWebsite] = e.sources.WebsiteContent(ctx, s, c.websiteURL)
	})
	p.done(dm.KindWebsite)
}

func (e *Engine) logo(ctx context.Context, s dm.Subject, c *collected, p *progress) {
	c.results[dm.KindLogo] = dm.Failed(dm.KindLogo)
	guard(s, dm.KindLogo, func() {
		c.results[dm.KindLogo] = e.sources.Logo(ctx, s, c.websiteURL)
	})
	p.done(dm.KindLogo)
}

func (e *Engine) searchSource(ctx context.Context, s dm.Subject, kind dm.SourceKind,
	fn func(context.Context, dm.Subject) dm.SourceResult, c *collected, p *progress) {
	c.results[kind] = dm.Failed(kind)
	guard(s, kind, func() {
		res := fn(ctx, s)
		res.Kind = kind
		c.results[kind] = res
	})
	p.done(kind)
}

func (e *Engine) financial(ctx context.Context, s dm.Subject, c *collected, p *progress) {
	guard(s, dm.KindFinancial, func() {
		c.financial = e.sources.Financial(ctx, s)
	})
	p.done(dm.KindFinancial)
}

// guard 吸收抓取器中的 panic
func guard(s dm.Subject, kind dm.SourceKind, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.ForSource(kind, s.Name).Errorf("抓取器 panic: %v", r)
		}
	}()
	fn()
}

type progress struct {
	mu    sync.Mutex
	count int
	total int
	cb    ProgressCallback
}

func (p *progress) done(kind dm.SourceKind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	if p.cb != nil {
		p.cb(kind, p.count, p.total)
	}
}
