// Package llm 对话模型的统一封装：上下文预算、限流和单次补全调用。
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

// ErrEmptyCompletion 模型返回了空内容
var ErrEmptyCompletion = errors.New("empty completion")

// Budget 送入模型的上下文字符上限，超出部分直接截断
type Budget int

// Apply 截断文本
func (b Budget) Apply(text string) string {
	return dm.Truncate(text, int(b))
}

// Params 单次请求参数
type Params struct {
	MaxTokens   int
	Temperature float32
}

// Completer 单次补全
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message, p Params) (string, error)
}

// ModelFactory 创建对话模型
type ModelFactory func(ctx context.Context) (einomodel.BaseChatModel, error)

// Client 带限流的补全客户端，不做重试
type Client struct {
	limiter *rate.Limiter

	mu        sync.Mutex
	chatModel einomodel.BaseChatModel
	factory   ModelFactory
}

var _ Completer = (*Client)(nil)

// NewClient 创建客户端，limiter 可以为 nil
func NewClient(cm einomodel.BaseChatModel, limiter *rate.Limiter) *Client {
	return &Client{chatModel: cm, limiter: limiter}
}

// NewLazyClient 第一次 Complete 时才创建模型，创建失败会在下次调用时重试
func NewLazyClient(factory ModelFactory, limiter *rate.Limiter) *Client {
	return &Client{factory: factory, limiter: limiter}
}

func (c *Client) model(ctx context.Context) (einomodel.BaseChatModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chatModel != nil {
		return c.chatModel, nil
	}
	if c.factory == nil {
		return nil, errors.New("llm chat model is not configured")
	}
	cm, err := c.factory(ctx)
	if err != nil {
		return nil, err
	}
	c.chatModel = cm
	return cm, nil
}

// NewLimiter 按 RPM/QPS 配置创建限流器
func NewLimiter(rpm, qps int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	if qps <= 0 {
		qps = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), qps)
}

// Complete 发起一次请求并返回文本
func (c *Client) Complete(ctx context.Context, messages []*schema.Message, p Params) (string, error) {
	chatModel, err := c.model(ctx)
	if err != nil {
		return "", err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var opts []einomodel.Option
	if p.MaxTokens > 0 {
		opts = append(opts, einomodel.WithMaxTokens(p.MaxTokens))
	}
	if p.Temperature > 0 {
		opts = append(opts, einomodel.WithTemperature(p.Temperature))
	}

	resp, err := chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Content), nil
}
