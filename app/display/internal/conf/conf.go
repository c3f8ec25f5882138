package conf

type Bootstrap struct {
	Server *Server
	Radar  *Radar
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

type Radar struct {
	Llm         *LLM         `json:"llm"`
	Search      *Search      `json:"search"`
	Fetch       *Fetch       `json:"fetch"`
	Budget      *Budget      `json:"budget"`
	Finance     *Finance     `json:"finance"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
}

type LLM struct {
	Provider string    `json:"provider"`
	BaseUrl  string    `json:"base_url"`
	ApiKey   string    `json:"api_key"`
	Model    string    `json:"model"`
	Timeout  int32     `json:"timeout"`
	Summary  *Generate `json:"summary"`
	Chat     *Generate `json:"chat"`
}

type Generate struct {
	MaxTokens   int32   `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

type Search struct {
	Provider string   `json:"provider"`
	Google   *Google  `json:"google"`
	Tavily   *Tavily  `json:"tavily"`
	Searxng  *SearXNG `json:"searxng"`
}

type Google struct {
	BaseUrl string `json:"base_url"`
}

type Tavily struct {
	ApiKey string `json:"api_key"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Fetch struct {
	UserAgent       string `json:"user_agent"`
	SearchTimeout   int32  `json:"search_timeout"`
	WebsiteTimeout  int32  `json:"website_timeout"`
	LogoTimeout     int32  `json:"logo_timeout"`
	MaxWebsiteChars int32  `json:"max_website_chars"`
	Parallel        bool   `json:"parallel"`
}

type Budget struct {
	SummaryChars  int32 `json:"summary_chars"`
	ChatChars     int32 `json:"chat_chars"`
	HistoryWindow int32 `json:"history_window"`
}

type Finance struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}
