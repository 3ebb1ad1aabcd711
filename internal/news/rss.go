package news

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

const (
	rssWindow  = 24 * time.Hour
	rssMaxItem = 10
)

var (
	rssItemRe       = regexp.MustCompile(`(?s)<item>(.*?)</item>`)
	rssPubDateRe    = regexp.MustCompile(`<pubDate>(.*?)</pubDate>`)
	rssTitleCDATARe = regexp.MustCompile(`(?s)<title><!\[CDATA\[(.*?)\]\]></title>`)
	rssTitleRe      = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	rssLinkRe       = regexp.MustCompile(`(?s)<link>(.*?)</link>`)
	rssSourceRe     = regexp.MustCompile(`(?s)<source[^>]+url=["']([^"']+)["'][^>]*>(.*?)</source>`)
	rssDescCDATARe  = regexp.MustCompile(`(?s)<description><!\[CDATA\[(.*?)\]\]></description>`)
	rssDescRe       = regexp.MustCompile(`(?s)<description>(.*?)</description>`)
	rssImgSrcRe     = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// fetchRSS is the fallback discovery source: a Google News search feed,
// parsed with the fixed item grammar and bounded to recent items.
func fetchRSS(ctx context.Context, fetcher ports.Fetcher, feedURL string, now time.Time) ([]domain.RawNewsItem, error) {
	body, err := fetcher.FetchPage(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("rss fetch: %w", err)
	}
	return parseRSS(body, now), nil
}

// parseRSS extracts items published within the trailing window, capped at
// ten.
func parseRSS(body string, now time.Time) []domain.RawNewsItem {
	cutoff := now.Add(-rssWindow)
	var items []domain.RawNewsItem

	for _, match := range rssItemRe.FindAllStringSubmatch(body, -1) {
		item := match[1]

		var pubDate time.Time
		if m := rssPubDateRe.FindStringSubmatch(item); m != nil {
			if parsed, err := time.Parse(time.RFC1123, strings.TrimSpace(m[1])); err == nil {
				pubDate = parsed
			} else if parsed, err := time.Parse(time.RFC1123Z, strings.TrimSpace(m[1])); err == nil {
				pubDate = parsed
			}
		}
		if !pubDate.IsZero() && pubDate.Before(cutoff) {
			continue
		}

		title, ok := matchFirst(item, rssTitleCDATARe, rssTitleRe)
		if !ok {
			continue
		}
		link, ok := matchFirst(item, rssLinkRe)
		if !ok {
			continue
		}

		raw := domain.RawNewsItem{
			Title:  entityReplacer.Replace(title),
			Source: "新聞",
			URL:    strings.TrimSpace(link),
		}
		if m := rssSourceRe.FindStringSubmatch(item); m != nil {
			raw.SourceURL = m[1]
			raw.Source = m[2]
		}
		if desc, ok := matchFirst(item, rssDescCDATARe, rssDescRe); ok {
			if m := rssImgSrcRe.FindStringSubmatch(desc); m != nil {
				raw.Image = m[1]
			}
			raw.RawDescription = strings.TrimSpace(entityReplacer.Replace(htmlTagRe.ReplaceAllString(desc, "")))
		}

		if pubDate.IsZero() {
			pubDate = now
		} else {
			raw.Published = pubDate.Local().Format("15:04")
		}
		raw.PublishedAt = pubDate

		items = append(items, raw)
		if len(items) >= rssMaxItem {
			break
		}
	}
	return items
}

// matchFirst tries the patterns in order and returns the first capture.
func matchFirst(s string, patterns ...*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}
