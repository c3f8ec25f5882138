package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/llm"
	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

type fakeCompleter struct {
	replies  []string
	err      error
	calls    int
	messages []*schema.Message
	params   llm.Params
}

func (f *fakeCompleter) Complete(_ context.Context, messages []*schema.Message, p llm.Params) (string, error) {
	f.calls++
	f.messages = messages
	f.params = p
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func researched(body string) *dm.AggregateRecord {
	rec := &dm.AggregateRecord{Subject: dm.Subject{Name: "Acme"}}
	rec.Set(dm.Succeed(dm.KindReviews, body))
	rec.Finalize(rec.CompletedAt)
	return rec
}

func TestAsk_NoResearch(t *testing.T) {
	fc := &fakeCompleter{}
	var tr dm.ChatTranscript
	_, err := New(fc, 0, 0, llm.Params{}).Ask(context.Background(), "Acme", &dm.AggregateRecord{}, &tr, "who are you?")
	assert.ErrorIs(t, err, ErrNoResearch)
	assert.Equal(t, "please research a company first", err.Error())
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, fc.calls)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	fc := &fakeCompleter{}
	var tr dm.ChatTranscript
	_, err := New(fc, 0, 0, llm.Params{}).Ask(context.Background(), "Acme", researched("Acme reviews are fine."), &tr, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, fc.calls)
}

func TestAsk_Success(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"They make widgets."}}
	var tr dm.ChatTranscript
	a := New(fc, 0, 0, llm.Params{})

	answer, err := a.Ask(context.Background(), "Acme", researched("Acme reviews are fine."), &tr, " What do they make? ")
	require.NoError(t, err)
	assert.Equal(t, "They make widgets.", answer)
	assert.Equal(t, []dm.ChatTurn{
		{Role: dm.RoleUser, Content: "What do they make?"},
		{Role: dm.RoleAssistant, Content: "They make widgets."},
	}, tr.Turns())

	assert.Equal(t, llm.Params{MaxTokens: 800, Temperature: 0.5}, fc.params)
	require.Len(t, fc.messages, 2)
	assert.Equal(t, schema.System, fc.messages[0].Role)
	assert.True(t, strings.HasPrefix(fc.messages[0].Content, "You are a company intelligence assistant for Acme."))
	assert.Contains(t, fc.messages[0].Content, "COMPANY INFORMATION:\nCOMPANY REVIEWS FOR ACME:\nAcme reviews are fine.")
	assert.Equal(t, schema.User, fc.messages[1].Role)
}

func TestAsk_FailureKeepsOnlyUserTurn(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("boom")}
	var tr dm.ChatTranscript
	_, err := New(fc, 0, 0, llm.Params{}).Ask(context.Background(), "Acme", researched("Acme reviews are fine."), &tr, "hi")

	var ce *CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Error generating response: boom", err.Error())
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, dm.RoleUser, tr.Turns()[0].Role)
}

func TestAsk_HistoryWindow(t *testing.T) {
	fc := &fakeCompleter{}
	var tr dm.ChatTranscript
	for i := 0; i < 10; i++ {
		tr.Append(dm.RoleUser, fmt.Sprintf("q%d", i))
		tr.Append(dm.RoleAssistant, fmt.Sprintf("a%d", i))
	}

	_, err := New(fc, 0, 0, llm.Params{}).Ask(context.Background(), "Acme", researched("Acme reviews are fine."), &tr, "latest")
	require.NoError(t, err)

	// system + 最近 8 条
	require.Len(t, fc.messages, 1+DefaultWindow)
	assert.Equal(t, "latest", fc.messages[len(fc.messages)-1].Content)
	assert.Equal(t, schema.Assistant, fc.messages[1].Role)
	assert.Equal(t, "a6", fc.messages[1].Content)
	// 旧消息仍保留在记录中
	assert.Equal(t, 22, tr.Len())
}

func TestAsk_BudgetEnforced(t *testing.T) {
	fc := &fakeCompleter{}
	var tr dm.ChatTranscript
	a := New(fc, 500, 0, llm.Params{})

	_, err := a.Ask(context.Background(), "Acme", researched(strings.Repeat("review ", 50000)), &tr, "q")
	require.NoError(t, err)
	header := len([]rune(fmt.Sprintf(systemPromptTpl, "Acme", "")))
	assert.Equal(t, header+500, len([]rune(fc.messages[0].Content)))
}
