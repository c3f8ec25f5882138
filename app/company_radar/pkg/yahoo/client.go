package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

const (
	// DefaultBaseURL 行情接口地址
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultCookieURL 下发会话 cookie 的地址，getcrumb 依赖该 cookie
	DefaultCookieURL = "https://fc.yahoo.com"

	// DefaultTimeout 默认超时
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrNoHistory 代码无效或没有历史价格
	ErrNoHistory = errors.New("no price history for ticker")
	// ErrNoProfile 公司基本信息不可用
	ErrNoProfile = errors.New("no company profile for ticker")
)

// Client 行情客户端
type Client struct {
	baseURL    string
	cookieURL  string
	userAgent  string
	httpClient *http.Client

	mu    sync.Mutex
	crumb string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL. The cookie URL follows it unless set explicitly afterwards.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
			c.cookieURL = c.baseURL
		}
	}
}

// WithCookieURL sets the URL that hands out the session cookie.
func WithCookieURL(cookieURL string) ClientOption {
	return func(c *Client) {
		if cookieURL != "" {
			c.cookieURL = cookieURL
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient 创建客户端
func NewClient(opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:    DefaultBaseURL,
		cookieURL:  DefaultCookieURL,
		httpClient: &http.Client{Timeout: DefaultTimeout, Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type rawValue struct {
	Raw int64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Industry          string `json:"industry"`
				Sector            string `json:"sector"`
				FullTimeEmployees int64  `json:"fullTimeEmployees"`
			} `json:"assetProfile"`
			Price struct {
				MarketCap rawValue `json:"marketCap"`
			} `json:"price"`
			FinancialData struct {
				TotalRevenue rawValue `json:"totalRevenue"`
			} `json:"financialData"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// APIError 接口返回的错误
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo finance error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Lookup 查询一年的日线和公司基本信息。
// 没有历史价格时返回 ErrNoHistory，基本信息不可用时返回 ErrNoProfile，两者都不会返回部分结果
func (c *Client) Lookup(ctx context.Context, ticker string) (*model.FinancialSnapshot, error) {
	var chart chartResponse
	params := url.Values{}
	params.Set("range", "1y")
	params.Set("interval", "1d")
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), params, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: chart.Chart.Error.Description, Endpoint: "chart"}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, ErrNoHistory
	}

	r := chart.Chart.Result[0]
	var closes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}
	var history []model.PricePoint
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		history = append(history, model.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	snap := &model.FinancialSnapshot{
		Ticker:       ticker,
		Currency:     r.Meta.Currency,
		CurrentPrice: r.Meta.RegularMarketPrice,
		PriceHistory: history,
	}
	if snap.CurrentPrice == 0 {
		snap.CurrentPrice = history[len(history)-1].Close
	}

	if err := c.fillProfile(ctx, snap); err != nil {
		logger.Log.Debugf("公司基本信息获取失败 [%s]: %v", ticker, err)
		return nil, fmt.Errorf("%w: %v", ErrNoProfile, err)
	}
	return snap, nil
}

// sessionCrumb 先取 cookie 再换 crumb，结果缓存到下次 401 为止
func (c *Client) sessionCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumb != "" {
		return c.crumb, nil
	}

	// 该地址通常返回 404，只需要它下发的 cookie
	if req, err := c.newRequest(ctx, c.cookieURL); err == nil {
		if resp, err := c.httpClient.Do(req); err == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
		}
	}

	req, err := c.newRequest(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get crumb: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read crumb: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: "getcrumb"}
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", errors.New("empty crumb")
	}
	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

func (c *Client) fillProfile(ctx context.Context, snap *model.FinancialSnapshot) error {
	crumb, err := c.sessionCrumb(ctx)
	if err != nil {
		return err
	}

	var sr summaryResponse
	params := url.Values{}
	params.Set("modules", "assetProfile,price,financialData")
	params.Set("crumb", crumb)
	if err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(snap.Ticker), params, &sr); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.resetCrumb()
		}
		return err
	}
	if sr.QuoteSummary.Error != nil {
		return errors.New(sr.QuoteSummary.Error.Description)
	}
	if len(sr.QuoteSummary.Result) == 0 {
		return errors.New("empty quote summary")
	}

	res := sr.QuoteSummary.Result[0]
	snap.Industry = res.AssetProfile.Industry
	snap.Sector = res.AssetProfile.Sector
	snap.Employees = res.AssetProfile.FullTimeEmployees
	snap.MarketCap = res.Price.MarketCap.Raw
	snap.Revenue = res.FinancialData.TotalRevenue.Raw
	if snap.Industry == "" && snap.Sector == "" && snap.MarketCap == 0 {
		return errors.New("empty company profile")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	req, err := c.newRequest(ctx, fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode()))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}
