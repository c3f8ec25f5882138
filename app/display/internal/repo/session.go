package repo

import (
	"context"

	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/display/internal/domain"
)

// SessionRepo 调研会话仓库接口
type SessionRepo interface {
	// Research 调研公司并替换当前会话
	Research(ctx context.Context, subject dm.Subject) error
	// Summarize 生成概要
	Summarize(ctx context.Context) string
	// Ask 提问
	Ask(ctx context.Context, question string) (string, error)
	// Clear 清空会话
	Clear(ctx context.Context)
	// Get 当前会话状态
	Get(ctx context.Context) *domain.SessionView
}
