package resource

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tagflow/pkg/layout"
	"tagflow/pkg/markup"
	"tagflow/pkg/text"
	stdnet "tagflow/std/net"
)

// Document is a loaded page ready for layout.
type Document struct {
	URL    string
	Title  string
	Tokens []markup.Token
	Raw    bool // view-source display
}

// Pipeline ties fetching, tokenizing, layout and painting together and
// keeps the navigation history. It is safe for use from several goroutines;
// renders are serialized.
type Pipeline struct {
	fetcher Fetcher
	fonts   *text.FontSet
	engine  *layout.Engine
	log     logrus.FieldLogger

	mu      sync.Mutex
	history *History
	current *Document
}

func NewPipeline(fetcher Fetcher, fonts *text.FontSet, engine *layout.Engine) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		fonts:   fonts,
		engine:  engine,
		log:     logrus.StandardLogger(),
		history: NewHistory(),
	}
}

func (p *Pipeline) SetLogger(l logrus.FieldLogger) {
	p.log = l
}

// Load turns a fetched page into a Document. Nothing from a previous load
// is carried over.
func (p *Pipeline) Load(page *Page) *Document {
	doc := &Document{URL: page.URL, Raw: page.ViewSource}
	if page.ViewSource {
		doc.Tokens = []markup.Token{markup.TextToken(page.Body)}
	} else {
		doc.Tokens, doc.Title = markup.Tokenize(page.Body)
	}
	if doc.Title == "" {
		doc.Title = page.URL
	}
	p.log.WithFields(logrus.Fields{"url": page.URL, "tokens": len(doc.Tokens)}).Debug("loaded page")
	return doc
}

// Navigate fetches uri, records it in the history and makes it current.
// A relative uri is resolved against the current page.
func (p *Pipeline) Navigate(ctx context.Context, uri string) (*Document, error) {
	p.mu.Lock()
	if cur := p.history.Current(); cur != "" && stdnet.IsNetworkURL(cur) && !hasScheme(uri) {
		uri = stdnet.ResolveURL(cur, uri)
	}
	p.mu.Unlock()

	doc, err := p.open(ctx, uri)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.history.Visit(uri)
	p.current = doc
	p.mu.Unlock()
	return doc, nil
}

// Back loads the previous history entry. The history only moves once the
// page has loaded.
func (p *Pipeline) Back(ctx context.Context) (*Document, error) {
	return p.move(ctx, -1)
}

// Forward loads the next history entry.
func (p *Pipeline) Forward(ctx context.Context) (*Document, error) {
	return p.move(ctx, 1)
}

// Reload fetches the current history entry again.
func (p *Pipeline) Reload(ctx context.Context) (*Document, error) {
	return p.move(ctx, 0)
}

func (p *Pipeline) move(ctx context.Context, delta int) (*Document, error) {
	p.mu.Lock()
	from := p.history.pos
	uri, ok := p.history.peek(delta)
	p.mu.Unlock()
	if !ok {
		return nil, errors.New("no history entry")
	}
	doc, err := p.open(ctx, uri)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.history.pos != from {
		// another navigation finished first
		return nil, errors.Errorf("history changed while loading %s", uri)
	}
	p.history.step(delta)
	p.current = doc
	return doc, nil
}

func (p *Pipeline) open(ctx context.Context, uri string) (*Document, error) {
	page, err := p.fetcher.Fetch(ctx, uri)
	if err != nil {
		p.log.WithError(err).WithField("url", uri).Warn("fetch failed")
		return nil, err
	}
	return p.Load(page), nil
}

// Current returns the document shown last, or nil.
func (p *Pipeline) Current() *Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// CanBack reports whether Back has an entry to load.
func (p *Pipeline) CanBack() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.CanBack()
}

// CanForward reports whether Forward has an entry to load.
func (p *Pipeline) CanForward() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.CanForward()
}

// History returns the navigation state. Callers must not touch it while
// navigation is in flight; use CanBack and CanForward from other goroutines.
func (p *Pipeline) History() *History {
	return p.history
}

// Config returns the layout configuration the pipeline renders with.
func (p *Pipeline) Config() layout.Config {
	return p.engine.Config()
}
