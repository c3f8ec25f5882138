package search

import "context"

// Topic 搜索类别
const (
	TopicGeneral = "general"
	TopicNews    = "news"
)

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// ImageSearcher 支持图片搜索的后端，返回图片地址
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string) ([]string, error)
}

// Request 通用搜索请求
type Request struct {
	Query      string
	Topic      string // "news" or "general"
	MaxResults int
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果，Content 为结果摘要
type Result struct {
	Title         string
	URL           string
	Content       string
	Score         float64
	PublishedDate string
}
