package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

// stubSources 记录调用顺序，可指定某个数据源 panic
type stubSources struct {
	mu       sync.Mutex
	calls    []string
	panicOn  string
	snapshot *dm.FinancialSnapshot
}

func (s *stubSources) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
	if name == s.panicOn {
		panic(name + " exploded")
	}
}

func (s *stubSources) ResolveWebsite(_ context.Context, _ dm.Subject) string {
	s.record("resolve")
	return "https://acme.com"
}

func (s *stubSources) WebsiteContent(_ context.Context, _ dm.Subject, url string) dm.SourceResult {
	s.record("website")
	res := dm.Succeed(dm.KindWebsite, "Acme builds widgets at "+url)
	res.URL = url
	return res
}

func (s *stubSources) Logo(_ context.Context, _ dm.Subject, websiteURL string) dm.SourceResult {
	s.record("logo")
	return dm.Succeed(dm.KindLogo, websiteURL+"/favicon.ico")
}

func (s *stubSources) News(_ context.Context, _ dm.Subject) dm.SourceResult {
	s.record("news")
	return dm.Succeed(dm.KindNews, "Headline: Acme ships widget 2.0\nSnippet: big news")
}

func (s *stubSources) Professional(_ context.Context, _ dm.Subject) dm.SourceResult {
	s.record("professional")
	return dm.Failed(dm.KindProfessional)
}

func (s *stubSources) Social(_ context.Context, _ dm.Subject) dm.SourceResult {
	s.record("social")
	return dm.Succeed(dm.KindSocial, "Twitter Handle: @acme")
}

func (s *stubSources) Reviews(_ context.Context, _ dm.Subject) dm.SourceResult {
	s.record("reviews")
	return dm.Succeed(dm.KindReviews, "Great place to work, review says.")
}

func (s *stubSources) Financial(_ context.Context, subject dm.Subject) *dm.FinancialSnapshot {
	s.record("financial")
	if subject.Ticker == "" {
		return nil
	}
	return s.snapshot
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(src Sources, parallel bool) *Engine {
	return New(src, WithParallel(parallel), WithClock(func() time.Time { return fixedNow }))
}

func TestResearch_FixedOrder(t *testing.T) {
	src := &stubSources{}
	rec, err := newTestEngine(src, false).Research(context.Background(), dm.Subject{Name: " Acme "}, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"resolve", "website", "logo", "news", "professional", "social", "reviews", "financial"}, src.calls)
	assert.Equal(t, "Acme", rec.Subject.Name)
	assert.Equal(t, "https://acme.com", rec.WebsiteURL)
	assert.Equal(t, fixedNow, rec.CompletedAt)

	var kinds []dm.SourceKind
	for _, r := range rec.Sources {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, dm.AllKinds, kinds)

	assert.True(t, rec.Has(dm.KindWebsite))
	assert.False(t, rec.Has(dm.KindProfessional))
	assert.Nil(t, rec.Financial)
	assert.True(t, strings.HasPrefix(rec.CombinedText, "COMPANY WEBSITE CONTENT FOR ACME:\n"))
	assert.NotContains(t, rec.CombinedText, "favicon.ico")
	assert.Contains(t, rec.PresenceSummary, "❌ LinkedIn Information")
}

func TestResearch_PanickingFetcherIsolated(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		src := &stubSources{panicOn: "news"}
		rec, err := newTestEngine(src, parallel).Research(context.Background(), dm.Subject{Name: "Acme"}, RunOptions{})
		require.NoError(t, err)

		assert.False(t, rec.Has(dm.KindNews))
		assert.True(t, rec.Has(dm.KindSocial))
		assert.True(t, rec.Has(dm.KindReviews))
		assert.Len(t, rec.Sources, len(dm.AllKinds))
	}
}

func TestResearch_PanicInWebsiteStillRunsLogo(t *testing.T) {
	src := &stubSources{panicOn: "resolve"}
	rec, err := newTestEngine(src, false).Research(context.Background(), dm.Subject{Name: "Acme"}, RunOptions{})
	require.NoError(t, err)
	assert.False(t, rec.Has(dm.KindWebsite))
	assert.Contains(t, src.calls, "logo")
	assert.Empty(t, rec.WebsiteURL)
}

func TestResearch_Financial(t *testing.T) {
	src := &stubSources{snapshot: &dm.FinancialSnapshot{
		Ticker:       "ACME",
		Industry:     "Widgets",
		PriceHistory: []dm.PricePoint{{Date: fixedNow, Close: 10}},
	}}
	rec, err := newTestEngine(src, false).Research(context.Background(), dm.Subject{Name: "Acme", Ticker: "acme"}, RunOptions{})
	require.NoError(t, err)

	require.NotNil(t, rec.Financial)
	assert.Contains(t, rec.CombinedText, "FINANCIAL DATA FOR ACME (ACME):\nMarket Cap: $N/A\nIndustry: Widgets")
	assert.Contains(t, rec.PresenceSummary, "✅ Financial Data (Ticker: ACME)")
}

func TestResearch_ParallelMatchesSequential(t *testing.T) {
	seq, err := newTestEngine(&stubSources{}, false).Research(context.Background(), dm.Subject{Name: "Acme"}, RunOptions{})
	require.NoError(t, err)
	par, err := newTestEngine(&stubSources{}, true).Research(context.Background(), dm.Subject{Name: "Acme"}, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, seq.CombinedText, par.CombinedText)
	assert.Equal(t, seq.PresenceSummary, par.PresenceSummary)
	assert.Equal(t, seq.Sources, par.Sources)
}

func TestResearch_Progress(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	opts := RunOptions{ProgressCallback: func(_ dm.SourceKind, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(dm.AllKinds), total)
		seen = append(seen, done)
	}}

	_, err := newTestEngine(&stubSources{}, true).Research(context.Background(), dm.Subject{Name: "Acme"}, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, seen)
}

func TestResearch_EmptyName(t *testing.T) {
	src := &stubSources{}
	_, err := newTestEngine(src, false).Research(context.Background(), dm.Subject{Name: "  "}, RunOptions{})
	assert.ErrorIs(t, err, dm.ErrEmptySubjectName)
	assert.Empty(t, src.calls)
}
