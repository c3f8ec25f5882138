package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/company_radar/app/company_radar/pkg/search"
)

const resultsPage = `<html><body>
<div class="g"><div><a href="/url?q=https://acme.com/&amp;sa=U"><h3>Acme Corp - Official Site</h3><div>acme.com</div></a></div>
<div><span>Acme makes the best widgets in the world since 1949.</span></div></div>
<div class="g"><div><a href="/url?q=https://www.linkedin.com/company/acme&amp;sa=U"><h3>Acme | LinkedIn</h3></a></div>
<div><span>Acme | 12,000 followers on LinkedIn. Widgets for everyone.</span></div></div>
<div class="g"><div><a href="https://maps.google.com/x"><h3>Acme on Maps</h3></a></div></div>
<div class="g"><div><a href="/url?q=https://acme.com/&amp;sa=U"><h3>Acme Corp - Official Site</h3></a></div></div>
</body></html>`

func TestParseResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultsPage))
	require.NoError(t, err)

	results := ParseResults(doc, 0)
	require.Len(t, results, 3)

	assert.Equal(t, "Acme Corp - Official Site", results[0].Title)
	assert.Equal(t, "https://acme.com/", results[0].URL)
	assert.Equal(t, "Acme makes the best widgets in the world since 1949.", results[0].Content)

	assert.Equal(t, "https://www.linkedin.com/company/acme", results[1].URL)
	// 搜索引擎自身链接被过滤
	assert.Empty(t, results[2].URL)

	assert.Len(t, ParseResults(doc, 1), 1)
}

func TestParseResults_UnexpectedLayout(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><p>captcha</p></html>"))
	require.NoError(t, err)
	assert.Empty(t, ParseResults(doc, 5))
}

func TestUnwrapURL(t *testing.T) {
	assert.Equal(t, "https://acme.com/about", UnwrapURL("/url?q=https://acme.com/about&sa=U&ved=x"))
	assert.Equal(t, "https://acme.com", UnwrapURL("https://acme.com"))
	assert.Empty(t, UnwrapURL("/search?q=acme"))
	assert.Empty(t, UnwrapURL("https://www.google.com/preferences"))
	assert.Empty(t, UnwrapURL(""))
}

func TestClient_Search(t *testing.T) {
	var gotQuery, gotTbm, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotTbm = r.URL.Query().Get("tbm")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-agent", 0)
	resp, err := c.Search(context.Background(), &search.Request{Query: "Acme news", Topic: search.TopicNews, MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, "Acme news", gotQuery)
	assert.Equal(t, "nws", gotTbm)
	assert.Equal(t, "test-agent", gotUA)
}

func TestClient_SearchImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isch", r.URL.Query().Get("tbm"))
		_, _ = w.Write([]byte(`<img src="/logo.gif"><img src="https://encrypted-tbn0.gstatic.com/a.png"><img data-src="https://cdn.acme.com/logo.png">`))
	}))
	defer srv.Close()

	imgs, err := NewClient(srv.URL, "ua", 0).SearchImages(context.Background(), "Acme logo")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://encrypted-tbn0.gstatic.com/a.png", "https://cdn.acme.com/logo.png"}, imgs)
}

func TestClient_SearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "ua", 0).Search(context.Background(), &search.Request{Query: "x"})
	assert.ErrorContains(t, err, "status 429")
}
