package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

// Client SearXNG API 客户端
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient 创建一个新的 SearXNG 客户端，timeout 单位为秒
func NewClient(baseURL string, timeout int, userAgent string) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: t},
	}
}

// Ensure Client implements search.Searcher
var (
	_ search.Searcher      = (*Client)(nil)
	_ search.ImageSearcher = (*Client)(nil)
)

// SearchResponse SearXNG 响应结构
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// SearchResult SearXNG 单条结果
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	ImgSrc        string  `json:"img_src"`
	PublishedDate string  `json:"publishedDate"` // SearXNG 使用 publishedDate
	Score         float64 `json:"score"`
}

// Search 执行搜索
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	category := "general"
	if req.Topic == search.TopicNews {
		category = "news"
	}
	sr, err := c.query(ctx, req.Query, category)
	if err != nil {
		return nil, err
	}

	var results []search.Result
	for _, r := range sr.Results {
		results = append(results, search.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
		if req.MaxResults > 0 && len(results) >= req.MaxResults {
			break
		}
	}
	return &search.Response{Results: results}, nil
}

// SearchImages 图片类别搜索
func (c *Client) SearchImages(ctx context.Context, query string) ([]string, error) {
	sr, err := c.query(ctx, query, "images")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, r := range sr.Results {
		if r.ImgSrc != "" {
			out = append(out, r.ImgSrc)
		}
	}
	return out, nil
}

func (c *Client) query(ctx context.Context, q, category string) (*SearchResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/search"

	params := u.Query()
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("categories", category)
	u.RawQuery = params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	// 添加 User-Agent 避免被简单的反爬虫策略拦截
	httpReq.Header.Set("User-Agent", c.userAgent)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("searxng api error (status %d): %s", res.StatusCode, string(body))
	}

	var sr SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	return &sr, nil
}
