package net

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
)

const userAgent = "tagflow/1.0 (compatible; Go)"

// MaxRedirects is the number of redirects followed before giving up.
const MaxRedirects = 10

// ErrTooManyRedirects is returned when a fetch exceeds MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// httpClient is a shared HTTP client with reasonable timeouts.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) > MaxRedirects {
			return ErrTooManyRedirects
		}
		return nil
	},
}

// Fetch retrieves the content at the given URL via HTTP/HTTPS. The body is
// decoded to UTF-8 using the charset of the Content-Type header; unknown
// charsets are passed through unchanged.
func Fetch(ctx context.Context, rawURL string) (body []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetching %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", errors.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "reading response body")
	}

	contentType = resp.Header.Get("Content-Type")
	return DecodeCharset(body, contentType), contentType, nil
}

// DecodeCharset converts body to UTF-8 according to the charset parameter
// of contentType.
func DecodeCharset(body []byte, contentType string) []byte {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	name := strings.TrimSpace(params["charset"])
	if name == "" {
		return body
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

// ResolveURL resolves a possibly-relative URI against a base URL.
// If ref is already absolute, it is returned as-is.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
