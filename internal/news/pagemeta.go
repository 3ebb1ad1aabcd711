package news

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// PageMeta is what a best-effort article-page fetch can recover for an item
// that arrived without an image or excerpt.
type PageMeta struct {
	Image       string
	Description string
}

// fetchPageMeta pulls og:image and the meta description from the article
// page. Any failure returns empty metadata.
func fetchPageMeta(ctx context.Context, fetcher ports.Fetcher, pageURL string) PageMeta {
	body, err := fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return PageMeta{}
	}
	return extractPageMeta(body)
}

func extractPageMeta(body string) PageMeta {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return PageMeta{}
	}

	var meta PageMeta
	doc.Find(`meta[property="og:image"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, ok := s.Attr("content"); ok && content != "" {
			meta.Image = content
			return false
		}
		return true
	})
	doc.Find(`meta[name="description"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, ok := s.Attr("content"); ok && content != "" {
			meta.Description = strings.TrimSpace(content)
			return false
		}
		return true
	})
	if meta.Description == "" {
		doc.Find(`meta[property="og:description"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if content, ok := s.Attr("content"); ok && content != "" {
				meta.Description = strings.TrimSpace(content)
				return false
			}
			return true
		})
	}
	return meta
}
