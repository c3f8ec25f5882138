package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrEmptySubjectName 公司名称为空
var ErrEmptySubjectName = errors.New("company name is required")

// Subject 一次调研会话的研究对象
type Subject struct {
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"` // 可选，官网域名提示
	Ticker string `json:"ticker,omitempty"` // 可选，股票代码
}

// Normalize 去除首尾空白
func (s Subject) Normalize() Subject {
	return Subject{
		Name:   strings.TrimSpace(s.Name),
		Domain: strings.TrimSpace(s.Domain),
		Ticker: strings.ToUpper(strings.TrimSpace(s.Ticker)),
	}
}

// Validate 校验必填字段
func (s Subject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptySubjectName
	}
	return nil
}

// SourceKind 数据源类型，声明顺序即抓取顺序
type SourceKind int

const (
	KindWebsite SourceKind = iota
	KindLogo
	KindNews
	KindProfessional
	KindSocial
	KindReviews
	KindFinancial
)

// AllKinds 固定的抓取顺序
var AllKinds = []SourceKind{
	KindWebsite, KindLogo, KindNews, KindProfessional, KindSocial, KindReviews, KindFinancial,
}

func (k SourceKind) String() string {
	switch k {
	case KindWebsite:
		return "website"
	case KindLogo:
		return "logo"
	case KindNews:
		return "news"
	case KindProfessional:
		return "professional"
	case KindSocial:
		return "social"
	case KindReviews:
		return "reviews"
	case KindFinancial:
		return "financial"
	default:
		return "unknown"
	}
}

// Label 拼接上下文时使用的标题
func (k SourceKind) Label() string {
	switch k {
	case KindWebsite:
		return "COMPANY WEBSITE CONTENT"
	case KindLogo:
		return "COMPANY LOGO"
	case KindNews:
		return "RECENT NEWS"
	case KindProfessional:
		return "LINKEDIN INFORMATION"
	case KindSocial:
		return "TWITTER INFORMATION"
	case KindReviews:
		return "COMPANY REVIEWS"
	case KindFinancial:
		return "FINANCIAL DATA"
	default:
		return "UNKNOWN SOURCE"
	}
}

// DisplayName 完成摘要中展示的名称
func (k SourceKind) DisplayName() string {
	switch k {
	case KindWebsite:
		return "Company Website Content"
	case KindLogo:
		return "Company Logo"
	case KindNews:
		return "Recent News Articles"
	case KindProfessional:
		return "LinkedIn Information"
	case KindSocial:
		return "Twitter Information"
	case KindReviews:
		return "Company Reviews"
	case KindFinancial:
		return "Financial Data"
	default:
		return "Unknown Source"
	}
}

// SourceResult 单次抓取结果，失败时 Body 为空
type SourceResult struct {
	Kind      SourceKind `json:"kind"`
	Label     string     `json:"label"`
	Body      string     `json:"body"`
	URL       string     `json:"url,omitempty"`
	Succeeded bool       `json:"succeeded"`
}

// Failed 构造一个失败结果
func Failed(kind SourceKind) SourceResult {
	return SourceResult{Kind: kind, Label: kind.Label()}
}

// Succeed 构造结果，正文为空时视为失败
func Succeed(kind SourceKind, body string) SourceResult {
	body = strings.TrimSpace(body)
	if body == "" {
		return Failed(kind)
	}
	return SourceResult{Kind: kind, Label: kind.Label(), Body: body, Succeeded: true}
}

// PricePoint 日收盘价
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// FinancialSnapshot 财务快照，只有在代码可解析且有历史价格时才存在
type FinancialSnapshot struct {
	Ticker       string       `json:"ticker"`
	Currency     string       `json:"currency,omitempty"`
	MarketCap    int64        `json:"market_cap,omitempty"`
	Industry     string       `json:"industry,omitempty"`
	Sector       string       `json:"sector,omitempty"`
	Employees    int64        `json:"employees,omitempty"`
	Revenue      int64        `json:"revenue,omitempty"`
	CurrentPrice float64      `json:"current_price,omitempty"`
	PriceHistory []PricePoint `json:"price_history"`
}

// Summary 供 LLM 使用的文本摘要
func (f *FinancialSnapshot) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Market Cap: $%s\n", formatInt(f.MarketCap))
	fmt.Fprintf(&sb, "Industry: %s\n", orNA(f.Industry))
	fmt.Fprintf(&sb, "Sector: %s\n", orNA(f.Sector))
	fmt.Fprintf(&sb, "Employees: %s\n", formatInt(f.Employees))
	fmt.Fprintf(&sb, "Revenue: $%s", formatInt(f.Revenue))
	if f.CurrentPrice > 0 {
		fmt.Fprintf(&sb, "\nCurrent Price: %.2f %s", f.CurrentPrice, f.Currency)
	}
	return strings.TrimSpace(sb.String())
}

func formatInt(v int64) string {
	if v == 0 {
		return "N/A"
	}
	return strconv.FormatInt(v, 10)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

const (
	// WebsiteExcerptChars 官网正文在合并上下文中的截断长度
	WebsiteExcerptChars = 2000
	truncatedMarker     = "...[truncated]"
)

// SourceDelimiter 各数据源之间的分隔符
var SourceDelimiter = "\n\n" + strings.Repeat("-", 50) + "\n\n"

// AggregateRecord 一次调研的聚合结果
type AggregateRecord struct {
	Subject Subject `json:"subject"`

	WebsiteURL   string             `json:"website_url,omitempty"`
	Website      *SourceResult      `json:"website,omitempty"`
	Logo         *SourceResult      `json:"logo,omitempty"`
	News         *SourceResult      `json:"news,omitempty"`
	Professional *SourceResult      `json:"professional,omitempty"`
	Social       *SourceResult      `json:"social,omitempty"`
	Reviews      *SourceResult      `json:"reviews,omitempty"`
	Financial    *FinancialSnapshot `json:"financial,omitempty"`

	Sources         []SourceResult `json:"sources"` // 按抓取顺序
	CombinedText    string         `json:"combined_text"`
	PresenceSummary string         `json:"presence_summary"`
	CompletedAt     time.Time      `json:"completed_at"`
}

// Set 写入对应字段，失败的结果只记录在 Sources 中
func (r *AggregateRecord) Set(res SourceResult) {
	r.Sources = append(r.Sources, res)
	if !res.Succeeded {
		return
	}
	v := res
	switch res.Kind {
	case KindWebsite:
		r.Website = &v
	case KindLogo:
		r.Logo = &v
	case KindNews:
		r.News = &v
	case KindProfessional:
		r.Professional = &v
	case KindSocial:
		r.Social = &v
	case KindReviews:
		r.Reviews = &v
	}
}

// SetFinancial 写入财务快照，nil 记为失败
func (r *AggregateRecord) SetFinancial(snap *FinancialSnapshot) {
	if snap == nil {
		r.Sources = append(r.Sources, Failed(KindFinancial))
		return
	}
	r.Financial = snap
	r.Sources = append(r.Sources, SourceResult{
		Kind:      KindFinancial,
		Label:     KindFinancial.Label(),
		Body:      snap.Summary(),
		Succeeded: true,
	})
}

// Has 判断某类数据源是否成功
func (r *AggregateRecord) Has(kind SourceKind) bool {
	if r == nil {
		return false
	}
	switch kind {
	case KindWebsite:
		return r.Website != nil
	case KindLogo:
		return r.Logo != nil
	case KindNews:
		return r.News != nil
	case KindProfessional:
		return r.Professional != nil
	case KindSocial:
		return r.Social != nil
	case KindReviews:
		return r.Reviews != nil
	case KindFinancial:
		return r.Financial != nil
	}
	return false
}

// SucceededCount 成功的数据源数量
func (r *AggregateRecord) SucceededCount() int {
	n := 0
	for _, k := range AllKinds {
		if r.Has(k) {
			n++
		}
	}
	return n
}

// Empty 没有任何可供 LLM 使用的数据源（logo 不计入）
func (r *AggregateRecord) Empty() bool {
	if r == nil {
		return true
	}
	for _, k := range AllKinds {
		if k != KindLogo && r.Has(k) {
			return false
		}
	}
	return true
}

// Finalize 生成合并文本与完成摘要
func (r *AggregateRecord) Finalize(now time.Time) {
	r.CombinedText = r.buildCombinedText()
	r.PresenceSummary = r.buildPresenceSummary()
	r.CompletedAt = now
}

func (r *AggregateRecord) header(kind SourceKind) string {
	name := strings.ToUpper(r.Subject.Name)
	if kind == KindFinancial && r.Subject.Ticker != "" {
		return fmt.Sprintf("%s FOR %s (%s):", kind.Label(), name, r.Subject.Ticker)
	}
	return fmt.Sprintf("%s FOR %s:", kind.Label(), name)
}

func (r *AggregateRecord) buildCombinedText() string {
	var blocks []string
	for _, res := range r.Sources {
		// logo 只是 URL，不进入上下文
		if !res.Succeeded || res.Kind == KindLogo {
			continue
		}
		body := res.Body
		if res.Kind == KindWebsite && utf8.RuneCountInString(body) > WebsiteExcerptChars {
			body = Truncate(body, WebsiteExcerptChars) + truncatedMarker
		}
		blocks = append(blocks, r.header(res.Kind)+"\n"+body)
	}
	return strings.Join(blocks, SourceDelimiter)
}

func (r *AggregateRecord) buildPresenceSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Data collected about %s:\n", r.Subject.Name)
	for _, k := range AllKinds {
		mark := "❌"
		if r.Has(k) {
			mark = "✅"
		}
		name := k.DisplayName()
		if k == KindFinancial && r.Subject.Ticker != "" {
			name = fmt.Sprintf("%s (Ticker: %s)", name, r.Subject.Ticker)
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, name)
	}
	return sb.String()
}

// Truncate 按字符（rune）截断
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Role 对话角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn 一轮对话消息
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatTranscript 只追加的对话记录
type ChatTranscript struct {
	turns []ChatTurn
}

// Append 追加一条消息
func (t *ChatTranscript) Append(role Role, content string) {
	t.turns = append(t.turns, ChatTurn{Role: role, Content: content})
}

// Len 消息条数
func (t *ChatTranscript) Len() int {
	return len(t.turns)
}

// Turns 返回副本
func (t *ChatTranscript) Turns() []ChatTurn {
	out := make([]ChatTurn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Window 最近 k 条消息，更早的不进入请求但仍保留在记录中
func (t *ChatTranscript) Window(k int) []ChatTurn {
	if k <= 0 {
		return nil
	}
	start := len(t.turns) - k
	if start < 0 {
		start = 0
	}
	out := make([]ChatTurn, len(t.turns)-start)
	copy(out, t.turns[start:])
	return out
}

// Reset 清空记录
func (t *ChatTranscript) Reset() {
	t.turns = nil
}
