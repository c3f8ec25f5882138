// Package summarizer 根据聚合结果生成公司概要。
package summarizer

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/llm"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

// NoDataMessage 没有任何数据时返回的固定文本
const NoDataMessage = "No data available to generate summary."

const (
	DefaultBudget      llm.Budget = 30000
	DefaultMaxTokens              = 500
	DefaultTemperature float32    = 0.3
)

const systemPromptTpl = `You are a business intelligence analyst. Create a concise but comprehensive summary of %s based on the provided data. Focus on key business information, recent developments, market position, and company culture. Format the summary in 3-4 paragraphs maximum. Only use information from the provided data.`

const userPromptTpl = "Here is the collected data about %s. Please summarize it:\n%s"

// Summarizer 概要生成器
type Summarizer struct {
	llm    llm.Completer
	budget llm.Budget
	params llm.Params
}

// New 创建生成器，零值参数使用默认值
func New(c llm.Completer, budget llm.Budget, params llm.Params) *Summarizer {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = DefaultMaxTokens
	}
	if params.Temperature <= 0 {
		params.Temperature = DefaultTemperature
	}
	return &Summarizer{llm: c, budget: budget, params: params}
}

// BuildMessages 构造请求消息
func (s *Summarizer) BuildMessages(companyName string, record *dm.AggregateRecord) []*schema.Message {
	return []*schema.Message{
		{Role: schema.System, Content: fmt.Sprintf(systemPromptTpl, companyName)},
		{Role: schema.User, Content: fmt.Sprintf(userPromptTpl, companyName, s.budget.Apply(record.CombinedText))},
	}
}

// Summarize 生成概要。没有数据时不调用模型；调用失败时返回可直接展示的错误文本
func (s *Summarizer) Summarize(ctx context.Context, companyName string, record *dm.AggregateRecord) string {
	if record.Empty() {
		return NoDataMessage
	}

	summary, err := s.llm.Complete(ctx, s.BuildMessages(companyName, record), s.params)
	if err != nil {
		logger.Log.Errorf("生成概要失败 [%s]: %v", companyName, err)
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	return summary
}
