// Package session 一次调研会话的上下文：研究对象、聚合结果、概要和对话记录。
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/chat"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/engine"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/logger"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/summarizer"
)

// ErrTurnInFlight 上一个问题还在等待回答
var ErrTurnInFlight = errors.New("a question is already awaiting a response")

// Researcher 聚合引擎
type Researcher interface {
	Research(ctx context.Context, subject dm.Subject, opts engine.RunOptions) (*dm.AggregateRecord, error)
}

// Snapshot 会话状态的只读副本
type Snapshot struct {
	ID         string              `json:"id"`
	Subject    *dm.Subject         `json:"subject,omitempty"`
	Record     *dm.AggregateRecord `json:"record,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Transcript []dm.ChatTurn       `json:"transcript"`
	Awaiting   bool                `json:"awaiting_response"`
}

// Session 会话。所有方法并发安全
type Session struct {
	researcher Researcher
	summarizer *summarizer.Summarizer
	assistant  *chat.Assistant

	mu         sync.Mutex
	id         string
	subject    *dm.Subject
	record     *dm.AggregateRecord
	summary    string
	transcript dm.ChatTranscript
	awaiting   bool
	generation uint64
}

// New 创建空会话
func New(r Researcher, s *summarizer.Summarizer, a *chat.Assistant) *Session {
	return &Session{
		researcher: r,
		summarizer: s,
		assistant:  a,
		id:         uuid.NewString(),
	}
}

// ID 会话标识，每次调研或清空后重新生成
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Research 调研新公司，替换之前的全部状态
func (s *Session) Research(ctx context.Context, subject dm.Subject, opts engine.RunOptions) (*dm.AggregateRecord, error) {
	subject = subject.Normalize()
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	record, err := s.researcher.Research(ctx, subject, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.subject = &subject
	s.record = record
	logger.Log.Infof("会话 [%s] 已切换到公司 [%s]", s.id, subject.Name)
	return record, nil
}

// Summarize 生成概要并缓存。没有调研数据时返回固定提示
func (s *Session) Summarize(ctx context.Context) string {
	s.mu.Lock()
	record, name, gen := s.record, s.subjectNameLocked(), s.generation
	s.mu.Unlock()

	summary := s.summarizer.Summarize(ctx, name, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	// 期间会话被重置时不写回
	if gen == s.generation && record != nil && !record.Empty() {
		s.summary = summary
	}
	return summary
}

// Ask 提问。同一时间只允许一个问题在等待回答
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return "", ErrTurnInFlight
	}
	if s.record.Empty() {
		s.mu.Unlock()
		return "", chat.ErrNoResearch
	}
	s.awaiting = true
	record, name, gen := s.record, s.subjectNameLocked(), s.generation
	// 在副本上操作，完成后再提交
	var working dm.ChatTranscript
	for _, t := range s.transcript.Turns() {
		working.Append(t.Role, t.Content)
	}
	s.mu.Unlock()

	answer, err := s.assistant.Ask(ctx, name, record, &working, question)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return answer, err
	}
	s.awaiting = false
	s.transcript = working
	return answer, err
}

// AwaitingResponse 是否有问题正在等待回答
func (s *Session) AwaitingResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Clear 清空会话的全部状态
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	logger.Log.Infof("会话已清空 [%s]", s.id)
}

// Snapshot 返回当前状态
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		Record:     s.record,
		Summary:    s.summary,
		Transcript: s.transcript.Turns(),
		Awaiting:   s.awaiting,
	}
	if s.subject != nil {
		subject := *s.subject
		snap.Subject = &subject
	}
	return snap
}

func (s *Session) resetLocked() {
	s.id = uuid.NewString()
	s.subject = nil
	s.record = nil
	s.summary = ""
	s.transcript.Reset()
	s.awaiting = false
	s.generation++
}

func (s *Session) subjectNameLocked() string {
	if s.subject == nil {
		return ""
	}
	return s.subject.Name
}
