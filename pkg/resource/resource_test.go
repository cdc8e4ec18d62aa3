package resource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagflow/pkg/layout"
	"tagflow/pkg/markup"
	"tagflow/pkg/text"
	stdnet "tagflow/std/net"
)

func TestFetch_HTTP(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("caf\xe9"))
	}))
	defer srv.Close()

	page, err := NewFetcher("").Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "café", page.Body)
	assert.Equal(t, "text/html; charset=iso-8859-1", page.ContentType)
	assert.False(t, page.ViewSource)
	assert.Contains(t, gotUA, "tagflow")
}

func TestFetch_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewFetcher("").Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_RedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/%d", &n)
		if n == 0 {
			w.Write([]byte("arrived"))
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/%d", n-1), http.StatusFound)
	}))
	defer srv.Close()

	page, err := NewFetcher("").Fetch(context.Background(), srv.URL+"/10")
	require.NoError(t, err)
	assert.Equal(t, "arrived", page.Body)

	_, err = NewFetcher("").Fetch(context.Background(), srv.URL+"/11")
	require.Error(t, err)
	assert.True(t, errors.Is(err, stdnet.ErrTooManyRedirects))
}

func TestFetch_Files(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<b>hi</b>"), 0o644))

	tests := []struct {
		name string
		uri  string
		raw  bool
	}{
		{"bare path", path, false},
		{"file url", "file://" + filepath.ToSlash(path), false},
		{"view source", "view-source:" + path, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NewFetcher("").Fetch(context.Background(), tt.uri)
			require.NoError(t, err)
			assert.Equal(t, "<b>hi</b>", page.Body)
			assert.Equal(t, tt.uri, page.URL)
			assert.Equal(t, tt.raw, page.ViewSource)
		})
	}

	page, err := NewFetcher(path).Fetch(context.Background(), "page.html")
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b>", page.Body)
}

func TestFetch_Errors(t *testing.T) {
	_, err := NewFetcher("").Fetch(context.Background(), "gopher://example.com/")
	assert.True(t, errors.Is(err, ErrUnsupportedScheme))

	_, err = NewFetcher("").Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, "", h.Current())
	_, ok := h.Back()
	assert.False(t, ok)

	h.Visit("a")
	h.Visit("b")
	h.Visit("b")
	h.Visit("c")
	assert.Equal(t, 3, h.Len())

	url, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, "b", url)
	url, _ = h.Back()
	assert.Equal(t, "a", url)
	assert.False(t, h.CanBack())

	url, ok = h.Forward()
	require.True(t, ok)
	assert.Equal(t, "b", url)

	// Visiting from the middle drops the forward entries.
	h.Visit("d")
	assert.False(t, h.CanForward())
	assert.Equal(t, 3, h.Len())
	url, _ = h.Back()
	assert.Equal(t, "b", url)

	url, ok = h.PeekForward()
	require.True(t, ok)
	assert.Equal(t, "d", url)
	url, ok = h.PeekBack()
	require.True(t, ok)
	assert.Equal(t, "a", url)
	assert.Equal(t, "b", h.Current(), "peeking leaves the cursor alone")
}

// mapFetcher serves pages from memory and counts fetches.
type mapFetcher struct {
	pages   map[string]string
	fetches int
}

func (f *mapFetcher) Fetch(_ context.Context, uri string) (*Page, error) {
	f.fetches++
	raw := strings.HasPrefix(uri, viewSourcePrefix)
	body, ok := f.pages[strings.TrimPrefix(uri, viewSourcePrefix)]
	if !ok {
		return nil, errors.New("not found: " + uri)
	}
	return &Page{URL: uri, Body: body, ViewSource: raw}, nil
}

func newTestPipeline(t *testing.T, pages map[string]string) (*Pipeline, *mapFetcher) {
	t.Helper()
	fonts := text.DefaultFontSet()
	cfg := layout.DefaultConfig()
	cfg.Roles = text.DefaultRoles()
	logger, _ := logtest.NewNullLogger()
	engine, err := layout.NewEngine(fonts, cfg, layout.WithLogger(logger))
	require.NoError(t, err)

	f := &mapFetcher{pages: pages}
	p := NewPipeline(f, fonts, engine)
	p.SetLogger(logger)
	return p, f
}

func TestPipeline_Load(t *testing.T) {
	p, _ := newTestPipeline(t, nil)

	doc := p.Load(&Page{URL: "u", Body: "<title>T</title><b>x</b>"})
	assert.Equal(t, "T", doc.Title)
	assert.False(t, doc.Raw)
	assert.Equal(t, "x", doc.Tokens[3].Text)

	doc = p.Load(&Page{URL: "u2", Body: "<b>x</b>"})
	assert.Equal(t, "u2", doc.Title, "title falls back to the URL")

	doc = p.Load(&Page{URL: "view-source:u", Body: "<b>x</b>", ViewSource: true})
	assert.True(t, doc.Raw)
	assert.Equal(t, []markup.Token{markup.TextToken("<b>x</b>")}, doc.Tokens)
}

func TestPipeline_Navigation(t *testing.T) {
	p, f := newTestPipeline(t, map[string]string{
		"one": "<title>One</title>first",
		"two": "<title>Two</title>second",
	})
	ctx := context.Background()

	doc, err := p.Navigate(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, "One", doc.Title)
	_, err = p.Navigate(ctx, "two")
	require.NoError(t, err)

	doc, err = p.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, "One", doc.Title)
	assert.Equal(t, doc, p.Current())

	doc, err = p.Forward(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Two", doc.Title)

	before := f.fetches
	doc, err = p.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Two", doc.Title)
	assert.Equal(t, before+1, f.fetches)

	_, err = p.Forward(ctx)
	assert.Error(t, err)

	_, err = p.Navigate(ctx, "missing")
	assert.Error(t, err)
	assert.Equal(t, "two", p.History().Current(), "failed loads are not recorded")
}

func TestPipeline_FailedBackKeepsPosition(t *testing.T) {
	p, f := newTestPipeline(t, map[string]string{
		"one": "<title>One</title>first",
		"two": "<title>Two</title>second",
	})
	ctx := context.Background()

	_, err := p.Navigate(ctx, "one")
	require.NoError(t, err)
	shown, err := p.Navigate(ctx, "two")
	require.NoError(t, err)

	delete(f.pages, "one")
	_, err = p.Back(ctx)
	require.Error(t, err)
	assert.Equal(t, "two", p.History().Current())
	assert.Equal(t, shown, p.Current())
	assert.True(t, p.CanBack())
	assert.False(t, p.CanForward())

	doc, err := p.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Two", doc.Title)

	f.pages["one"] = "<title>One</title>first"
	doc, err = p.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, "One", doc.Title)
	assert.False(t, p.CanBack())
	assert.True(t, p.CanForward())

	delete(f.pages, "two")
	_, err = p.Forward(ctx)
	require.Error(t, err)
	assert.Equal(t, "one", p.History().Current())
	assert.Equal(t, doc, p.Current())
}

func TestPipeline_RenderImage(t *testing.T) {
	p, _ := newTestPipeline(t, map[string]string{"doc": "<h1>Title</h1><p>Some <i>body</i> text</p>"})
	doc, err := p.Navigate(context.Background(), "doc")
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	res := p.RenderImage(doc, img, 1)
	assert.Len(t, res.Segments, 4)
	assert.Greater(t, res.ContentHeight, 0.0)

	ink := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			ink = true
			break
		}
	}
	assert.True(t, ink)
}

func TestPipeline_RenderPDF(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	doc := p.Load(&Page{URL: "mem", Body: "hello <b>pdf</b>"})

	pdf, res := p.RenderPDF(doc, 400, 300, 1)
	require.Len(t, res.Segments, 2)
	var sb strings.Builder
	require.NoError(t, pdf.Encode(&sb))
	assert.True(t, strings.HasPrefix(sb.String(), "%PDF"))
}

func TestPipeline_FetchFailureLogged(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	logger, hook := logtest.NewNullLogger()
	p.SetLogger(logger)

	_, err := p.Navigate(context.Background(), "nowhere")
	require.Error(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "nowhere", hook.LastEntry().Data["url"])
}
