package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

// 单个页面最多读取的字节数
const maxPageBytes = 5 << 20

// ResolveWebsite 解析官网地址。提供了域名时直接拼接，不发起搜索
func (c *Collector) ResolveWebsite(ctx context.Context, s model.Subject) string {
	if d := strings.TrimSpace(s.Domain); d != "" {
		if isHTTPURL(d) {
			return d
		}
		return "https://" + d
	}

	results := c.runSearch(ctx, model.KindWebsite, s, &search.Request{
		Query:      s.Name + " official website",
		Topic:      search.TopicGeneral,
		MaxResults: 10,
	})
	for _, r := range results {
		if isHTTPURL(r.URL) && !isSearchEngine(r.URL) {
			return r.URL
		}
	}
	logger.ForSource(model.KindWebsite, s.Name).Warn("未找到官网地址")
	return ""
}

func isSearchEngine(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "google.") || strings.Contains(host, "bing.com") || strings.Contains(host, "duckduckgo.com")
}

// WebsiteContent 抓取官网正文
func (c *Collector) WebsiteContent(ctx context.Context, s model.Subject, pageURL string) model.SourceResult {
	if pageURL == "" {
		return model.Failed(model.KindWebsite)
	}
	log := logger.ForSource(model.KindWebsite, s.Name)

	text, err := c.fetchPageText(ctx, pageURL)
	if err != nil {
		log.Warnf("抓取官网失败 [%s]: %v", pageURL, err)
		return model.Failed(model.KindWebsite)
	}

	res := model.Succeed(model.KindWebsite, model.Truncate(text, c.opts.MaxWebsiteChars))
	res.URL = pageURL
	if !res.Succeeded {
		log.Warnf("官网正文为空 [%s]", pageURL)
	}
	return res
}

func (c *Collector) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	req, err := c.newRequest(ctx, pageURL)
	if err != nil {
		return "", err
	}
	resp, err := c.websiteClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	// 优先使用 readability 提取主体内容，失败时退回全文
	if article, err := readability.FromReader(bytes.NewReader(body), parsed); err == nil {
		if text := normalizeText(article.TextContent); text != "" {
			return text, nil
		}
	}
	return extractBodyText(body)
}

// extractBodyText 移除脚本和样式后提取页面文本
func extractBodyText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	// 块级元素之间补换行，避免文字粘连
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, br, tr, section, article").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return normalizeText(doc.Text()), nil
}

// normalizeText 按行去空白，连续双空格也视为分段
func normalizeText(text string) string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if p := strings.TrimSpace(phrase); p != "" {
				chunks = append(chunks, p)
			}
		}
	}
	return strings.Join(chunks, "\n")
}
