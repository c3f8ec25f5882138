package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Budget      BudgetConfig      `yaml:"budget"`
	Finance     FinanceConfig     `yaml:"finance"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string         `yaml:"provider"` // openai / gemini / anthropic
	BaseURL  string         `yaml:"base_url"`
	APIKey   string         `yaml:"api_key"`
	Model    string         `yaml:"model"`
	Timeout  int            `yaml:"timeout"` // 秒
	Summary  GenerateConfig `yaml:"summary"`
	Chat     GenerateConfig `yaml:"chat"`
}

// GenerateConfig 单次生成参数
type GenerateConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"` // google / searxng / tavily
	Google   GoogleConfig  `yaml:"google"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// GoogleConfig 搜索页抓取配置
type GoogleConfig struct {
	BaseURL string `yaml:"base_url"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// FetchConfig 数据抓取配置
type FetchConfig struct {
	UserAgent       string `yaml:"user_agent"`
	SearchTimeout   int    `yaml:"search_timeout"`  // 秒
	WebsiteTimeout  int    `yaml:"website_timeout"` // 秒
	LogoTimeout     int    `yaml:"logo_timeout"`    // 秒
	MaxWebsiteChars int    `yaml:"max_website_chars"`
	Parallel        bool   `yaml:"parallel"`
}

// BudgetConfig 上下文截断预算（字符数）
type BudgetConfig struct {
	SummaryChars  int `yaml:"summary_chars"`
	ChatChars     int `yaml:"chat_chars"`
	HistoryWindow int `yaml:"history_window"`
}

// FinanceConfig 行情数据配置
type FinanceConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// DefaultUserAgent 浏览器 UA
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Default 返回全部使用默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig 从指定路径加载配置，路径为空时只使用默认值与环境变量
func LoadConfig(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyEnv 使用环境变量覆盖配置
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Search.Tavily.APIKey = v
	}
}

// ApplyDefaults 填充零值字段
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60
	}
	if c.LLM.Summary.MaxTokens <= 0 {
		c.LLM.Summary.MaxTokens = 500
	}
	if c.LLM.Summary.Temperature <= 0 {
		c.LLM.Summary.Temperature = 0.3
	}
	if c.LLM.Chat.MaxTokens <= 0 {
		c.LLM.Chat.MaxTokens = 800
	}
	if c.LLM.Chat.Temperature <= 0 {
		c.LLM.Chat.Temperature = 0.5
	}

	if c.Search.Provider == "" {
		c.Search.Provider = "google"
	}

	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Fetch.SearchTimeout <= 0 {
		c.Fetch.SearchTimeout = 10
	}
	if c.Fetch.WebsiteTimeout <= 0 {
		c.Fetch.WebsiteTimeout = 15
	}
	if c.Fetch.LogoTimeout <= 0 {
		c.Fetch.LogoTimeout = 5
	}
	if c.Fetch.MaxWebsiteChars <= 0 {
		c.Fetch.MaxWebsiteChars = 100000
	}

	if c.Budget.SummaryChars <= 0 {
		c.Budget.SummaryChars = 30000
	}
	if c.Budget.ChatChars <= 0 {
		c.Budget.ChatChars = 50000
	}
	if c.Budget.HistoryWindow <= 0 {
		c.Budget.HistoryWindow = 8
	}

	if c.Finance.Timeout <= 0 {
		c.Finance.Timeout = 10
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
}

// Seconds 将秒数配置转换为 time.Duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
