// Package chat 基于调研结果的问答。
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/llm"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

var (
	// ErrNoResearch 还没有可用的调研数据
	ErrNoResearch = errors.New("please research a company first")
	// ErrEmptyQuestion 问题为空
	ErrEmptyQuestion = errors.New("question is empty")
)

// CompletionError 模型调用失败，此时记录中只有用户消息
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("Error generating response: %v", e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

const (
	DefaultBudget      llm.Budget = 50000
	DefaultWindow                 = 8
	DefaultMaxTokens              = 800
	DefaultTemperature float32    = 0.5
)

const systemPromptTpl = `You are a company intelligence assistant for %s. Use ONLY the following information to answer questions. If you don't know something, admit it rather than making up information.

COMPANY INFORMATION:
%s`

// Assistant 问答助手
type Assistant struct {
	llm    llm.Completer
	budget llm.Budget
	window int
	params llm.Params
}

// New 创建助手，零值参数使用默认值
func New(c llm.Completer, budget llm.Budget, window int, params llm.Params) *Assistant {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = DefaultMaxTokens
	}
	if params.Temperature <= 0 {
		params.Temperature = DefaultTemperature
	}
	return &Assistant{llm: c, budget: budget, window: window, params: params}
}

// BuildMessages system 消息加上最近 window 条记录
func (a *Assistant) BuildMessages(companyName string, record *dm.AggregateRecord, transcript *dm.ChatTranscript) []*schema.Message {
	messages := []*schema.Message{
		{Role: schema.System, Content: fmt.Sprintf(systemPromptTpl, companyName, a.budget.Apply(record.CombinedText))},
	}
	for _, turn := range transcript.Window(a.window) {
		role := schema.User
		if turn.Role == dm.RoleAssistant {
			role = schema.Assistant
		}
		messages = append(messages, &schema.Message{Role: role, Content: turn.Content})
	}
	return messages
}

// Ask 回答一个问题。
// 成功时记录追加用户和助手两条消息；模型失败时只追加用户消息并返回 *CompletionError；
// 没有数据或问题为空时记录不变。
func (a *Assistant) Ask(ctx context.Context, companyName string, record *dm.AggregateRecord, transcript *dm.ChatTranscript, question string) (string, error) {
	if record.Empty() {
		return "", ErrNoResearch
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	transcript.Append(dm.RoleUser, question)
	answer, err := a.llm.Complete(ctx, a.BuildMessages(companyName, record, transcript), a.params)
	if err != nil {
		logger.Log.Errorf("生成回答失败 [%s]: %v", companyName, err)
		return "", &CompletionError{Err: err}
	}

	transcript.Append(dm.RoleAssistant, answer)
	return answer, nil
}
