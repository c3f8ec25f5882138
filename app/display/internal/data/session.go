package data

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/engine"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/session"
	"github.com/iWorld-y/company_radar/app/display/internal/domain"
	"github.com/iWorld-y/company_radar/app/display/internal/repo"
)

type sessionRepo struct {
	data *Data
	log  *log.Helper
}

// NewSessionRepo 创建会话仓库
func NewSessionRepo(data *Data, logger log.Logger) repo.SessionRepo {
	return &sessionRepo{data: data, log: log.NewHelper(logger)}
}

func (r *sessionRepo) Research(ctx context.Context, subject dm.Subject) error {
	_, err := r.data.sess.Research(ctx, subject, engine.RunOptions{
		ProgressCallback: func(kind dm.SourceKind, done, total int) {
			r.log.WithContext(ctx).Debugf("research progress %d/%d: %s", done, total, kind)
		},
	})
	return err
}

func (r *sessionRepo) Summarize(ctx context.Context) string {
	return r.data.sess.Summarize(ctx)
}

func (r *sessionRepo) Ask(ctx context.Context, question string) (string, error) {
	return r.data.sess.Ask(ctx, question)
}

func (r *sessionRepo) Clear(_ context.Context) {
	r.data.sess.Clear()
}

func (r *sessionRepo) Get(_ context.Context) *domain.SessionView {
	return toView(r.data.sess.Snapshot())
}

func toView(snap session.Snapshot) *domain.SessionView {
	view := &domain.SessionView{
		ID:               snap.ID,
		Company:          snap.Subject,
		Summary:          snap.Summary,
		Transcript:       snap.Transcript,
		AwaitingResponse: snap.Awaiting,
		Sources:          []domain.Source{},
	}
	rec := snap.Record
	if rec == nil {
		return view
	}

	view.WebsiteURL = rec.WebsiteURL
	view.PresenceSummary = rec.PresenceSummary
	view.CompletedAt = rec.CompletedAt.Format(time.RFC3339)
	if rec.Logo != nil {
		view.LogoURL = rec.Logo.Body
	}
	for _, src := range rec.Sources {
		view.Sources = append(view.Sources, domain.Source{
			Kind:      src.Kind.String(),
			Label:     src.Kind.DisplayName(),
			URL:       src.URL,
			Body:      src.Body,
			Succeeded: src.Succeeded,
		})
	}
	if f := rec.Financial; f != nil {
		view.Financial = &domain.Financial{
			Ticker:       f.Ticker,
			Currency:     f.Currency,
			CurrentPrice: f.CurrentPrice,
			Summary:      f.Summary(),
			HistoryDays:  len(f.PriceHistory),
		}
	}
	return view
}
