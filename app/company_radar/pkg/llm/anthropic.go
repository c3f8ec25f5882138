package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicChatModel 将 Anthropic Messages API 适配为 eino 的 BaseChatModel
type AnthropicChatModel struct {
	client anthropic.Client
	model  string
}

var _ einomodel.BaseChatModel = (*AnthropicChatModel)(nil)

// NewAnthropicChatModel 创建模型，baseURL 为空时使用官方地址
func NewAnthropicChatModel(apiKey, baseURL, model string) *AnthropicChatModel {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicChatModel{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// toAnthropicMessages 拆出 system 消息，其余按角色转换
func toAnthropicMessages(input []*schema.Message) ([]anthropic.MessageParam, string) {
	var system []string
	out := make([]anthropic.MessageParam, 0, len(input))
	for _, m := range input {
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.Assistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, strings.Join(system, "\n\n")
}

// Generate 生成一次回复
func (a *AnthropicChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	o := einomodel.GetCommonOptions(&einomodel.Options{}, opts...)
	messages, system := toAnthropicMessages(input)

	maxTokens := defaultAnthropicMaxTokens
	if o.MaxTokens != nil && *o.MaxTokens > 0 {
		maxTokens = *o.MaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if o.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*o.Temperature))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic generate: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return schema.AssistantMessage(sb.String(), nil), nil
}

// Stream 不支持增量输出，整体作为单个分片返回
func (a *AnthropicChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := a.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}
