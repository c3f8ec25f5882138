package service

import (
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/display/internal/usecase"
)

// ResearchReq 调研请求
type ResearchReq struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Ticker string `json:"ticker"`
}

// ChatReq 提问请求
type ChatReq struct {
	Question string `json:"question"`
}

// SummaryReply 概要
type SummaryReply struct {
	Summary string `json:"summary"`
}

type DisplayService struct {
	uc  *usecase.RadarUseCase
	log *log.Helper
}

func NewDisplayService(uc *usecase.RadarUseCase, logger log.Logger) *DisplayService {
	return &DisplayService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// RegisterRoutes 注册 JSON 接口
func (s *DisplayService) RegisterRoutes(srv *http.Server) {
	r := srv.Route("/")
	r.POST("/api/research", s.Research)
	r.GET("/api/session", s.Session)
	r.POST("/api/summary", s.Summary)
	r.POST("/api/chat", s.Chat)
	r.POST("/api/clear", s.Clear)
}

func (s *DisplayService) Research(ctx http.Context) error {
	var req ResearchReq
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	s.log.WithContext(ctx).Infof("research request: name=%q domain=%q ticker=%q", req.Name, req.Domain, req.Ticker)

	view, err := s.uc.Research(ctx, dm.Subject{Name: req.Name, Domain: req.Domain, Ticker: req.Ticker})
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusOK, view)
}

func (s *DisplayService) Session(ctx http.Context) error {
	return ctx.JSON(nethttp.StatusOK, s.uc.Session(ctx))
}

func (s *DisplayService) Summary(ctx http.Context) error {
	return ctx.JSON(nethttp.StatusOK, &SummaryReply{Summary: s.uc.Summary(ctx)})
}

func (s *DisplayService) Chat(ctx http.Context) error {
	var req ChatReq
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	reply, err := s.uc.Chat(ctx, req.Question)
	if err != nil {
		return err
	}
	return ctx.JSON(nethttp.StatusOK, reply)
}

func (s *DisplayService) Clear(ctx http.Context) error {
	return ctx.JSON(nethttp.StatusOK, s.uc.Clear(ctx))
}
