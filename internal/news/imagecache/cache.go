// Package imagecache persists remote article images under a local path
// exposed through the non-network newsimg:// scheme.
package imagecache

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// Scheme is the custom local URL scheme embedding an absolute file path.
const Scheme = "newsimg://"

// Cache downloads images best-effort. Every failure resolves to an empty
// reference; callers treat a missing image as "no image", never an error.
type Cache struct {
	fetcher ports.Fetcher
	dir     string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// New returns a cache writing into dir.
func New(fetcher ports.Fetcher, dir string, logger *slog.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		dir:     dir,
		timeout: 10 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
}

// Fetch downloads imageURL and stores it keyed by the news slot index.
// Non-http(s) URLs are rejected without any network call.
func (c *Cache) Fetch(ctx context.Context, imageURL string, slot int) string {
	if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		return ""
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.debug("cannot create image cache dir", "dir", c.dir, "error", err)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	header := http.Header{}
	header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	if origin := originOf(imageURL); origin != "" {
		header.Set("Referer", origin+"/")
	}

	body, contentType, err := c.fetcher.FetchBytes(ctx, imageURL, header)
	if err != nil || len(body) == 0 {
		c.debug("image fetch failed", "url", imageURL, "error", err)
		return ""
	}

	name := fmt.Sprintf("news-%d-%d%s", slot, c.now().UnixNano(), extensionFor(contentType))
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		c.debug("image write failed", "path", path, "error", err)
		return ""
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Scheme + abs
}

// extensionFor maps a Content-Type to a file extension, defaulting to jpeg.
func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	default:
		return ".jpg"
	}
}

func originOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Resolve maps a newsimg:// reference back to its file path, rejecting
// anything outside the scheme.
func Resolve(ref string) (string, bool) {
	if !strings.HasPrefix(ref, Scheme) {
		return "", false
	}
	path := strings.TrimPrefix(ref, Scheme)
	if path == "" {
		return "", false
	}
	return path, true
}

func (c *Cache) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
