package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

// fakeSearcher 按查询前缀返回预设结果
type fakeSearcher struct {
	results map[string][]search.Result
	images  []string
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	f.queries = append(f.queries, req.Query)
	if f.err != nil {
		return nil, f.err
	}
	for prefix, rs := range f.results {
		if strings.HasPrefix(req.Query, prefix) {
			return &search.Response{Results: rs}, nil
		}
	}
	return &search.Response{}, nil
}

func (f *fakeSearcher) SearchImages(_ context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	return f.images, f.err
}

type fakeFinance struct {
	snap  *model.FinancialSnapshot
	err   error
	calls int
}

func (f *fakeFinance) Lookup(_ context.Context, _ string) (*model.FinancialSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

var acme = model.Subject{Name: "Acme"}

func TestResolveWebsite_DomainHintSkipsSearch(t *testing.T) {
	fs := &fakeSearcher{}
	c := NewCollector(fs, nil, Options{})

	assert.Equal(t, "https://acme.com", c.ResolveWebsite(context.Background(), model.Subject{Name: "Acme", Domain: "acme.com"}))
	assert.Equal(t, "http://acme.com", c.ResolveWebsite(context.Background(), model.Subject{Name: "Acme", Domain: "http://acme.com"}))
	assert.Empty(t, fs.queries)
}

func TestResolveWebsite_Search(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]search.Result{
		"Acme official website": {
			{Title: "maps", URL: "https://maps.google.com/acme"},
			{Title: "no url"},
			{Title: "Acme", URL: "https://acme.example/"},
		},
	}}
	c := NewCollector(fs, nil, Options{})
	assert.Equal(t, "https://acme.example/", c.ResolveWebsite(context.Background(), acme))
	assert.Equal(t, []string{"Acme official website"}, fs.queries)

	fs.err = errors.New("blocked")
	assert.Empty(t, c.ResolveWebsite(context.Background(), acme))
}

func TestWebsiteContent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><head><title>Acme</title><style>.x{}</style><script>var a=1;</script></head>
<body><p>Acme builds industrial widgets.</p><p>Founded in 1949.</p></body></html>`))
	}))
	defer srv.Close()

	c := NewCollector(nil, nil, Options{UserAgent: "radar-test"})
	res := c.WebsiteContent(context.Background(), acme, srv.URL)
	require.True(t, res.Succeeded)
	assert.Equal(t, srv.URL, res.URL)
	assert.Contains(t, res.Body, "Acme builds industrial widgets.")
	assert.NotContains(t, res.Body, "var a=1")
	assert.Equal(t, "radar-test", gotUA)
}

func TestWebsiteContent_Truncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("widget ", 500) + "</p></body></html>"))
	}))
	defer srv.Close()

	c := NewCollector(nil, nil, Options{MaxWebsiteChars: 100})
	res := c.WebsiteContent(context.Background(), acme, srv.URL)
	require.True(t, res.Succeeded)
	assert.LessOrEqual(t, len([]rune(res.Body)), 100)
}

func TestWebsiteContent_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte("<html><body><script>x()</script></body></html>"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCollector(nil, nil, Options{})
	for _, u := range []string{"", srv.URL + "/down", srv.URL + "/empty", "http://127.0.0.1:1/unreachable"} {
		res := c.WebsiteContent(context.Background(), acme, u)
		assert.False(t, res.Succeeded, u)
		assert.Empty(t, res.Body, u)
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a\nb\nc", normalizeText("  a  \n\n b  c \n"))
}

func TestLogo_FaviconFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favicon.ico" {
			_, _ = w.Write([]byte{0, 0, 1, 0})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	fs := &fakeSearcher{images: []string{"https://cdn.example.com/acme.png"}}
	c := NewCollector(fs, nil, Options{})
	res := c.Logo(context.Background(), acme, srv.URL+"/about")
	require.True(t, res.Succeeded)
	assert.Equal(t, srv.URL+"/favicon.ico", res.Body)
	assert.Empty(t, fs.queries)
}

func TestLogo_ImageFallbackSkipsExcluded(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	fs := &fakeSearcher{images: []string{
		"/relative.png",
		"https://encrypted-tbn0.gstatic.com/thumb.png",
		"https://cdn.example.com/acme.png",
		"https://cdn.example.com/second.png",
	}}
	c := NewCollector(fs, nil, Options{})
	res := c.Logo(context.Background(), acme, srv.URL)
	require.True(t, res.Succeeded)
	assert.Equal(t, "https://cdn.example.com/acme.png", res.Body)
	assert.Equal(t, []string{"Acme logo"}, fs.queries)

	fs.images = []string{"https://encrypted-tbn0.gstatic.com/thumb.png"}
	assert.False(t, c.Logo(context.Background(), acme, "").Succeeded)
}

func TestNews(t *testing.T) {
	var rs []search.Result
	rs = append(rs, search.Result{Title: "short", Content: "skipped"})
	for i := 0; i < 15; i++ {
		rs = append(rs, search.Result{Title: "Acme expands widget line", Content: "Snippet text"})
	}
	fs := &fakeSearcher{results: map[string][]search.Result{"Acme news": rs}}

	res := NewCollector(fs, nil, Options{}).News(context.Background(), acme)
	require.True(t, res.Succeeded)
	items := strings.Split(res.Body, "\n\n")
	assert.Len(t, items, maxNewsItems)
	assert.Equal(t, "Headline: Acme expands widget line\nSnippet: Snippet text", items[0])
	assert.NotContains(t, res.Body, "skipped")
}

func TestNews_SearchFailureAbsorbed(t *testing.T) {
	fs := &fakeSearcher{err: errors.New("timeout")}
	res := NewCollector(fs, nil, Options{}).News(context.Background(), acme)
	assert.False(t, res.Succeeded)
	assert.Empty(t, res.Body)
	assert.Equal(t, model.KindNews, res.Kind)
}

func TestProfessional(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]search.Result{"site:linkedin.com Acme": {
		{Title: "Acme | LinkedIn", URL: "https://www.linkedin.com/company/acme", Content: "Acme | 12,000 followers on LinkedIn. Widgets for everyone."},
		{Title: "Jane Doe - Acme | LinkedIn", URL: "https://www.linkedin.com/in/jane", Content: "too short"},
		{Title: "Other page", URL: "https://example.com", Content: "This snippet is long enough but the title does not match."},
	}}}

	res := NewCollector(fs, nil, Options{}).Professional(context.Background(), acme)
	require.True(t, res.Succeeded)
	assert.Equal(t, "LinkedIn Company URL: https://www.linkedin.com/company/acme\n\nLinkedIn Info: Acme | 12,000 followers on LinkedIn. Widgets for everyone.", res.Body)
	assert.Equal(t, "https://www.linkedin.com/company/acme", res.URL)
}

func TestSocial(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]search.Result{"site:twitter.com Acme": {
		{Title: "Search", URL: "https://twitter.com/search?q=acme"},
		{Title: "Acme (@acmecorp) / X", URL: "https://x.com/acmecorp", Content: "Official account of Acme Corp widgets."},
		{Title: "Acme on Twitter", URL: "https://twitter.com/acmecorp/status/1", Content: "Our new widget ships today!"},
	}}}

	res := NewCollector(fs, nil, Options{}).Social(context.Background(), acme)
	require.True(t, res.Succeeded)
	lines := strings.Split(res.Body, "\n\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Twitter Handle: @acmecorp", lines[0])
	assert.Equal(t, "Twitter Info: Official account of Acme Corp widgets.", lines[1])
}

func TestTwitterHandle(t *testing.T) {
	assert.Equal(t, "acme", TwitterHandle("https://twitter.com/acme"))
	assert.Equal(t, "acme", TwitterHandle("https://mobile.twitter.com/acme/status/123"))
	assert.Equal(t, "acme", TwitterHandle("https://www.x.com/acme"))
	assert.Empty(t, TwitterHandle("https://twitter.com/search?q=acme"))
	assert.Empty(t, TwitterHandle("https://twitter.com/"))
	assert.Empty(t, TwitterHandle("https://example.com/acme"))
}

func TestReviews(t *testing.T) {
	long := "Acme employee reviews: great culture, long hours, solid pay and good benefits."
	fs := &fakeSearcher{results: map[string][]search.Result{"Acme reviews": {
		{Content: "review too short"},
		{Content: "This snippet is definitely long enough but mentions nothing relevant at all."},
		{Content: long}, {Content: long}, {Content: long}, {Content: long}, {Content: long}, {Content: long},
	}}}

	res := NewCollector(fs, nil, Options{}).Reviews(context.Background(), acme)
	require.True(t, res.Succeeded)
	assert.Len(t, strings.Split(res.Body, "\n\n"), maxReviewItems)
}

func TestFinancial_EmptyTickerNoCall(t *testing.T) {
	ff := &fakeFinance{snap: &model.FinancialSnapshot{PriceHistory: []model.PricePoint{{Close: 1}}}}
	c := NewCollector(nil, ff, Options{})

	assert.Nil(t, c.Financial(context.Background(), model.Subject{Name: "Acme", Ticker: ""}))
	assert.Nil(t, c.Financial(context.Background(), model.Subject{Name: "Acme", Ticker: "   "}))
	assert.Equal(t, 0, ff.calls)
}

func TestFinancial(t *testing.T) {
	ff := &fakeFinance{snap: &model.FinancialSnapshot{Ticker: "ACME", PriceHistory: []model.PricePoint{{Close: 1}}}}
	c := NewCollector(nil, ff, Options{})
	subject := model.Subject{Name: "Acme", Ticker: "ACME"}

	assert.NotNil(t, c.Financial(context.Background(), subject))

	// 没有历史价格时整体为空，而不是部分填充
	ff.snap = &model.FinancialSnapshot{Ticker: "ACME", Industry: "Widgets"}
	assert.Nil(t, c.Financial(context.Background(), subject))

	ff.snap, ff.err = nil, errors.New("404")
	assert.Nil(t, c.Financial(context.Background(), subject))
	assert.Equal(t, 3, ff.calls)
}
