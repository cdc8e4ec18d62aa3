package resource

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"

	stdnet "tagflow/std/net"
)

const viewSourcePrefix = "view-source:"

// ErrUnsupportedScheme is returned for URLs the fetcher cannot load.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Page is a fetched resource.
type Page struct {
	URL         string // as requested, including any view-source: prefix
	Body        string
	ContentType string
	ViewSource  bool // body should be shown as plain text
}

// Fetcher retrieves pages by URL.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*Page, error)
}

// DefaultFetcher loads http, https and file URLs, and bare file paths.
// Relative URIs are resolved against a base URL.
type DefaultFetcher struct {
	baseURL string
}

// NewFetcher creates a DefaultFetcher with the given base URL, which may be
// empty.
func NewFetcher(baseURL string) *DefaultFetcher {
	return &DefaultFetcher{baseURL: baseURL}
}

// Fetch retrieves the resource at uri. A view-source: prefix loads the
// remainder and flags the page for raw display.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) (*Page, error) {
	page := &Page{URL: uri}
	target := strings.TrimSpace(uri)
	if strings.HasPrefix(target, viewSourcePrefix) {
		page.ViewSource = true
		target = strings.TrimPrefix(target, viewSourcePrefix)
	}
	if f.baseURL != "" && !hasScheme(target) {
		target = stdnet.ResolveURL(f.baseURL, target)
	}

	switch {
	case stdnet.IsNetworkURL(target):
		body, ct, err := stdnet.Fetch(ctx, target)
		if err != nil {
			return nil, err
		}
		page.Body, page.ContentType = string(body), ct
	case strings.HasPrefix(target, "file://"):
		u, err := url.Parse(target)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", target)
		}
		if err := readFile(page, u.Path); err != nil {
			return nil, err
		}
	case !hasScheme(target):
		if err := readFile(page, target); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedScheme, "%s", target)
	}
	return page, nil
}

func readFile(page *Page, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	page.Body = string(data)
	page.ContentType = "text/html"
	return nil
}

// hasScheme reports whether s starts with "scheme:". Single letters are
// taken as Windows drive names.
func hasScheme(s string) bool {
	i := strings.Index(s, ":")
	if i < 2 {
		return false
	}
	for _, c := range s[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}
