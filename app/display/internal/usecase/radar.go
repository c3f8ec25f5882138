package usecase

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/chat"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/session"
	"github.com/iWorld-y/company_radar/app/display/internal/domain"
	"github.com/iWorld-y/company_radar/app/display/internal/repo"
)

// RadarUseCase 调研会话业务逻辑
type RadarUseCase struct {
	repo repo.SessionRepo
	log  *log.Helper
}

// NewRadarUseCase 创建业务逻辑实例
func NewRadarUseCase(repo repo.SessionRepo, logger log.Logger) *RadarUseCase {
	return &RadarUseCase{repo: repo, log: log.NewHelper(logger)}
}

// Research 调研公司，返回新的会话状态
func (uc *RadarUseCase) Research(ctx context.Context, subject dm.Subject) (*domain.SessionView, error) {
	subject = subject.Normalize()
	if err := subject.Validate(); err != nil {
		return nil, errors.BadRequest("EMPTY_COMPANY_NAME", err.Error())
	}
	if err := uc.repo.Research(ctx, subject); err != nil {
		uc.log.WithContext(ctx).Errorf("research %q failed: %v", subject.Name, err)
		return nil, errors.InternalServer("RESEARCH_FAILED", err.Error())
	}
	return uc.repo.Get(ctx), nil
}

// Session 当前会话状态
func (uc *RadarUseCase) Session(ctx context.Context) *domain.SessionView {
	return uc.repo.Get(ctx)
}

// Summary 生成概要，没有数据时返回固定提示
func (uc *RadarUseCase) Summary(ctx context.Context) string {
	return uc.repo.Summarize(ctx)
}

// Chat 提问
func (uc *RadarUseCase) Chat(ctx context.Context, question string) (*domain.ChatReply, error) {
	answer, err := uc.repo.Ask(ctx, question)
	if err != nil {
		var ce *chat.CompletionError
		switch {
		case stderrors.Is(err, chat.ErrNoResearch):
			return nil, errors.BadRequest("NO_RESEARCH", err.Error())
		case stderrors.Is(err, chat.ErrEmptyQuestion):
			return nil, errors.BadRequest("EMPTY_QUESTION", err.Error())
		case stderrors.Is(err, session.ErrTurnInFlight):
			return nil, errors.Conflict("TURN_IN_FLIGHT", err.Error())
		case stderrors.As(err, &ce):
			return nil, errors.InternalServer("COMPLETION_FAILED", ce.Error())
		default:
			return nil, errors.InternalServer("CHAT_FAILED", err.Error())
		}
	}
	return &domain.ChatReply{Answer: answer, Transcript: uc.repo.Get(ctx).Transcript}, nil
}

// Clear 清空会话
func (uc *RadarUseCase) Clear(ctx context.Context) *domain.SessionView {
	uc.repo.Clear(ctx)
	return uc.repo.Get(ctx)
}
