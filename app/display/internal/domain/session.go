package domain

import (
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

// Source 单个数据源的展示信息
type Source struct {
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	URL       string `json:"url,omitempty"`
	Body      string `json:"body,omitempty"`
	Succeeded bool   `json:"succeeded"`
}

// Financial 财务数据展示信息
type Financial struct {
	Ticker       string  `json:"ticker"`
	Currency     string  `json:"currency,omitempty"`
	CurrentPrice float64 `json:"current_price,omitempty"`
	Summary      string  `json:"summary"`
	HistoryDays  int     `json:"history_days"`
}

// SessionView 会话对外展示的状态
type SessionView struct {
	ID               string        `json:"id"`
	Company          *dm.Subject   `json:"company,omitempty"`
	WebsiteURL       string        `json:"website_url,omitempty"`
	LogoURL          string        `json:"logo_url,omitempty"`
	PresenceSummary  string        `json:"presence_summary,omitempty"`
	Sources          []Source      `json:"sources"`
	Financial        *Financial    `json:"financial,omitempty"`
	Summary          string        `json:"summary,omitempty"`
	Transcript       []dm.ChatTurn `json:"transcript"`
	AwaitingResponse bool          `json:"awaiting_response"`
	CompletedAt      string        `json:"completed_at,omitempty"`
}

// ChatReply 问答结果
type ChatReply struct {
	Answer     string        `json:"answer"`
	Transcript []dm.ChatTurn `json:"transcript"`
}
