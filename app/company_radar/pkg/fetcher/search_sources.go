package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

const (
	maxNewsItems    = 10
	maxProfileItems = 5
	maxReviewItems  = 5
)

// News 新闻搜索，每条为标题加摘要
func (c *Collector) News(ctx context.Context, s model.Subject) model.SourceResult {
	results := c.runSearch(ctx, model.KindNews, s, &search.Request{
		Query:      s.Name + " news",
		Topic:      search.TopicNews,
		MaxResults: 20,
	})

	var items []string
	for _, r := range results {
		headline := strings.TrimSpace(r.Title)
		// 过滤空标题或过短的标题
		if len(headline) <= 10 {
			continue
		}
		items = append(items, fmt.Sprintf("Headline: %s\nSnippet: %s", headline, strings.TrimSpace(r.Content)))
		if len(items) >= maxNewsItems {
			break
		}
	}
	return finish(model.KindNews, s, joinSnippets(items, maxNewsItems))
}

// Professional LinkedIn 公司主页与摘要
func (c *Collector) Professional(ctx context.Context, s model.Subject) model.SourceResult {
	results := c.runSearch(ctx, model.KindProfessional, s, &search.Request{
		Query:      "site:linkedin.com " + s.Name + " company",
		Topic:      search.TopicGeneral,
		MaxResults: 10,
	})

	var companyURL string
	var items []string
	for _, r := range results {
		if companyURL == "" && strings.Contains(r.URL, "linkedin.com/company") {
			companyURL = r.URL
		}
		snippet := strings.TrimSpace(r.Content)
		if strings.Contains(r.Title, "LinkedIn") && len(snippet) > 30 {
			items = append(items, "LinkedIn Info: "+snippet)
		}
	}
	if companyURL != "" {
		items = append([]string{"LinkedIn Company URL: " + companyURL}, items...)
	}

	res := finish(model.KindProfessional, s, joinSnippets(items, maxProfileItems))
	res.URL = companyURL
	return res
}

// Social Twitter/X 账号与摘要
func (c *Collector) Social(ctx context.Context, s model.Subject) model.SourceResult {
	results := c.runSearch(ctx, model.KindSocial, s, &search.Request{
		Query:      "site:twitter.com " + s.Name + " official",
		Topic:      search.TopicGeneral,
		MaxResults: 10,
	})

	var handle, profileURL string
	var items []string
	for _, r := range results {
		if handle == "" {
			if h := TwitterHandle(r.URL); h != "" {
				handle, profileURL = h, r.URL
			}
		}
		snippet := strings.TrimSpace(r.Content)
		if isTwitterTitle(r.Title) && len(snippet) > 20 {
			items = append(items, "Twitter Info: "+snippet)
		}
	}
	if handle != "" {
		items = append([]string{"Twitter Handle: @" + handle}, items...)
	}

	res := finish(model.KindSocial, s, joinSnippets(items, maxProfileItems))
	res.URL = profileURL
	return res
}

// 不是账号名的保留路径
var reservedTwitterPaths = map[string]bool{
	"search": true, "intent": true, "hashtag": true, "i": true, "home": true,
	"share": true, "explore": true, "login": true, "settings": true,
}

// TwitterHandle 从 twitter.com / x.com 链接中提取账号名
func TwitterHandle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "mobile.")
	if host != "twitter.com" && host != "x.com" {
		return ""
	}
	seg := strings.Split(strings.Trim(u.Path, "/"), "/")[0]
	if seg == "" || reservedTwitterPaths[strings.ToLower(seg)] {
		return ""
	}
	return seg
}

func isTwitterTitle(title string) bool {
	return strings.Contains(title, "Twitter") || strings.HasSuffix(strings.TrimSpace(title), "/ X")
}

// Reviews 员工评价搜索
func (c *Collector) Reviews(ctx context.Context, s model.Subject) model.SourceResult {
	results := c.runSearch(ctx, model.KindReviews, s, &search.Request{
		Query:      s.Name + " reviews glassdoor indeed",
		Topic:      search.TopicGeneral,
		MaxResults: 20,
	})

	var items []string
	for _, r := range results {
		snippet := strings.TrimSpace(r.Content)
		if len(snippet) > 50 && strings.Contains(strings.ToLower(snippet), "review") {
			items = append(items, snippet)
		}
		if len(items) >= maxReviewItems {
			break
		}
	}
	return finish(model.KindReviews, s, joinSnippets(items, maxReviewItems))
}

// Financial 财务数据；没有股票代码时直接返回 nil，不发起任何请求
func (c *Collector) Financial(ctx context.Context, s model.Subject) *model.FinancialSnapshot {
	ticker := strings.TrimSpace(s.Ticker)
	if ticker == "" || c.finance == nil {
		return nil
	}

	snap, err := c.finance.Lookup(ctx, ticker)
	if err != nil {
		logger.ForSource(model.KindFinancial, s.Name).Warnf("获取财务数据失败 [%s]: %v", ticker, err)
		return nil
	}
	if snap == nil || len(snap.PriceHistory) == 0 {
		return nil
	}
	return snap
}

func finish(kind model.SourceKind, s model.Subject, body string) model.SourceResult {
	res := model.Succeed(kind, body)
	if !res.Succeeded {
		logger.ForSource(kind, s.Name).Warn("未提取到有效内容")
	}
	return res
}
