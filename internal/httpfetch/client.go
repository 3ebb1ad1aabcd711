package httpfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

const maxRedirects = 5

// Client wraps http.Client with the fetch discipline the adapters rely on:
// browser-like headers, a hard page timeout, a response size cap, and manual
// redirect following so relative Location values resolve correctly.
type Client struct {
	http         *http.Client
	pageTimeout  time.Duration
	jsonTimeout  time.Duration
	maxPageBytes int64
	userAgent    string
	logger       *slog.Logger
}

var _ ports.Fetcher = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.HTTPConfig, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			// Redirects are followed manually in fetch.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		pageTimeout:  cfg.PageTimeout.Std(),
		jsonTimeout:  cfg.JSONTimeout.Std(),
		maxPageBytes: cfg.MaxPageBytes,
		userAgent:    cfg.UserAgent,
		logger:       logger,
	}
}

// FetchJSON GETs url and decodes the body into v. Network and parse errors
// propagate; callers decide how to degrade.
func (c *Client) FetchJSON(ctx context.Context, url string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.jsonTimeout)
	defer cancel()

	body, _, err := c.fetch(ctx, url, nil, 0)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// FetchPage GETs url with spoofed browser headers. Timeouts and the size
// cap resolve to whatever was read so far; only a failed connection is an
// error.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	body, _, err := c.fetch(ctx, url, header, c.maxPageBytes)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBytes GETs url with the caller's extra headers under the page
// timeout and returns the raw body plus the response Content-Type.
func (c *Client) FetchBytes(ctx context.Context, url string, header http.Header) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	return c.fetch(ctx, url, header, 0)
}

// fetch issues the request, following up to maxRedirects 3xx responses by
// hand. maxBytes > 0 enables the abort-on-exceed cap with partial delivery.
func (c *Client) fetch(ctx context.Context, url string, header http.Header, maxBytes int64) ([]byte, string, error) {
	current := url

	for redirects := 0; ; redirects++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, "", fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		for key, values := range header {
			for _, value := range values {
				req.Header.Set(key, value)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("request %s: %w", current, err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location, locErr := resp.Location()
			resp.Body.Close()
			if locErr != nil || redirects >= maxRedirects {
				return nil, "", fmt.Errorf("redirect from %s: no resolvable location", current)
			}
			// Location() resolves relative values against the request URL.
			current = location.String()
			continue
		}

		contentType := resp.Header.Get("Content-Type")
		body, readErr := c.readBody(resp.Body, maxBytes)
		resp.Body.Close()

		if readErr != nil && len(body) == 0 {
			return nil, "", fmt.Errorf("read %s: %w", current, readErr)
		}
		if readErr != nil {
			c.debug("partial body", "url", current, "bytes", len(body), "error", readErr)
		}
		return body, contentType, nil
	}
}

// readBody accumulates the body; hitting the cap or a mid-read error (e.g.
// the wall-clock timeout firing) returns the partial data with the error.
func (c *Client) readBody(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		body, err := io.ReadAll(io.LimitReader(r, maxBytes))
		if err != nil {
			return body, err
		}
		// Probe one extra byte to detect an over-cap response.
		var probe [1]byte
		if n, _ := r.Read(probe[:]); n > 0 {
			return body, fmt.Errorf("response exceeds %d bytes", maxBytes)
		}
		return body, nil
	}
	return io.ReadAll(r)
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// OriginReferer returns the hot-link-protection Referer value for url: its
// scheme://host origin with a trailing slash.
func OriginReferer(rawURL string) string {
	idx := strings.Index(rawURL, "://")
	if idx < 0 {
		return ""
	}
	rest := rawURL[idx+3:]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	return rawURL[:idx+3] + rest + "/"
}
