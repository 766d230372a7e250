/*
Package translit is the best-effort bridge between Latin and Devanagari
text used by the search boxes: Latin input is transliterated to Hindi,
anything else is translated to English.

The upstream services are free public endpoints with no SLA, so the whole
package is built around one rule: a failure returns the input unchanged.
No error ever reaches the caller; a timeout, a bad response shape or an
offline machine all degrade to "no transformation".
*/
package translit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTransliterateURL transliterates Latin text to Hindi.
	DefaultTransliterateURL = "https://inputtools.google.com/request"
	// DefaultTranslateURL translates Hindi text to English.
	DefaultTranslateURL = "https://translate.googleapis.com/translate_a/single"

	defaultTimeout = 5 * time.Second
)

// Client calls the text services. The zero value is not usable; construct
// with New.
type Client struct {
	http             *http.Client
	transliterateURL string
	translateURL     string
	log              *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoints overrides the upstream URLs (tests point these at local
// servers).
func WithEndpoints(transliterate, translate string) Option {
	return func(c *Client) {
		c.transliterateURL = transliterate
		c.translateURL = translate
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		http:             &http.Client{Timeout: defaultTimeout},
		transliterateURL: DefaultTransliterateURL,
		translateURL:     DefaultTranslateURL,
		log:              log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transform converts text between scripts: Latin input comes back as Hindi,
// non-Latin input comes back as English. Empty input yields empty output,
// and any upstream failure yields the input unchanged.
func (c *Client) Transform(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}
	if hasLatin(text) {
		return c.transliterate(ctx, text)
	}
	return c.translate(ctx, text)
}

func hasLatin(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// transliterate calls the input-tools endpoint. Response shape:
// ["SUCCESS", [[input, [candidate, ...], ...]]] - we take the first
// candidate.
func (c *Client) transliterate(ctx context.Context, text string) string {
	q := url.Values{}
	q.Set("text", text)
	q.Set("itc", "hi-t-i0-und")
	q.Set("num", "1")

	body, ok := c.get(ctx, c.transliterateURL+"?"+q.Encode())
	if !ok {
		return text
	}

	var data []any
	if err := json.Unmarshal(body, &data); err != nil {
		c.log.Debug("transliterate: bad response", zap.Error(err))
		return text
	}
	if out, ok := dig(data, 1, 0, 1, 0); ok {
		return out
	}
	return text
}

// translate calls the translate endpoint. Response shape:
// [[[translated, original, ...], ...], ...] - we take the first segment.
func (c *Client) translate(ctx context.Context, text string) string {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "hi")
	q.Set("tl", "en")
	q.Set("dt", "t")
	q.Set("q", text)

	body, ok := c.get(ctx, c.translateURL+"?"+q.Encode())
	if !ok {
		return text
	}

	var data []any
	if err := json.Unmarshal(body, &data); err != nil {
		c.log.Debug("translate: bad response", zap.Error(err))
		return text
	}
	if out, ok := dig(data, 0, 0, 0); ok {
		return out
	}
	return text
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("text service unreachable", zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Debug("text service error", zap.Int("status", resp.StatusCode))
		return nil, false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, false
	}
	return body, true
}

// dig walks nested []any indices and returns the string at the end.
func dig(v any, path ...int) (string, bool) {
	for _, i := range path {
		arr, ok := v.([]any)
		if !ok || i >= len(arr) {
			return "", false
		}
		v = arr[i]
	}
	s, ok := v.(string)
	return s, ok
}
