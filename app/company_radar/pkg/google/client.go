// Package google 抓取搜索结果页面并尽力解析。页面结构随时可能变化，解析失败时返回空结果而不是错误。
package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

// DefaultBaseURL 搜索引擎地址
const DefaultBaseURL = "https://www.google.com"

// Client 搜索结果页客户端
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient 创建客户端，baseURL 为空时使用默认地址
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

var (
	_ search.Searcher      = (*Client)(nil)
	_ search.ImageSearcher = (*Client)(nil)
)

// Search 抓取网页或新闻结果
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("hl", "en")
	if req.Topic == search.TopicNews {
		params.Set("tbm", "nws")
	}

	doc, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	return &search.Response{Results: ParseResults(doc, req.MaxResults)}, nil
}

// SearchImages 抓取图片结果页中的绝对地址
func (c *Client) SearchImages(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("tbm", "isch")

	doc, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"src", "data-src"} {
			if src, ok := s.Attr(attr); ok && isAbsoluteHTTP(src) {
				out = append(out, src)
				return
			}
		}
	})
	return out, nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) (*goquery.Document, error) {
	reqURL := c.baseURL + "/search?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search page error (status %d)", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page failed: %w", err)
	}
	return doc, nil
}

// ParseResults 从结果页中提取标题、链接和摘要，max<=0 时不限制数量
func ParseResults(doc *goquery.Document, max int) []search.Result {
	var results []search.Result
	seen := make(map[string]bool)

	doc.Find("h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		title := CleanText(h.Text())
		if title == "" {
			return true
		}

		var link string
		if a := h.Closest("a"); a.Length() > 0 {
			href, _ := a.Attr("href")
			link = UnwrapURL(href)
		}
		if link == "" {
			if a := h.Parent().Find("a[href]").First(); a.Length() > 0 {
				href, _ := a.Attr("href")
				link = UnwrapURL(href)
			}
		}

		key := link
		if key == "" {
			key = title
		}
		if seen[key] {
			return true
		}
		seen[key] = true

		results = append(results, search.Result{
			Title:   title,
			URL:     link,
			Content: snippetFor(h, title),
		})
		return max <= 0 || len(results) < max
	})
	return results
}

// snippetFor 在标题所在的结果块中找最长的一段非标题文本
func snippetFor(h *goquery.Selection, title string) string {
	var container *goquery.Selection
	h.ParentsFiltered("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(CleanText(s.Text())) > len(title)+20 {
			container = s
			return false
		}
		return true
	})
	if container == nil {
		return ""
	}

	var best string
	container.Find("div, span").Each(func(_ int, s *goquery.Selection) {
		if s.Find("h3").Length() > 0 {
			return
		}
		text := CleanText(s.Text())
		if text == title || strings.Contains(title, text) {
			return
		}
		if len(text) > len(best) {
			best = text
		}
	})
	return best
}

// UnwrapURL 解析 /url?q= 跳转链接，过滤搜索引擎自身的链接
func UnwrapURL(href string) string {
	if href == "" {
		return ""
	}
	if i := strings.Index(href, "url?q="); i >= 0 {
		if u, err := url.Parse(href[i:]); err == nil {
			href = u.Query().Get("q")
		}
	}
	if !isAbsoluteHTTP(href) {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil || strings.Contains(u.Host, "google.") {
		return ""
	}
	return href
}

// CleanText 合并空白字符
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isAbsoluteHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
