package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/domain"
)

const discoverWindow = 72 * time.Hour

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title  string `json:"title"`
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		URLToImage  string `json:"urlToImage"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// discover queries the primary article source over the keyword set. An empty
// result from a healthy response is not an error; the caller decides whether
// to fall back.
func (p *Pipeline) discover(ctx context.Context) ([]domain.RawNewsItem, error) {
	now := p.now()
	query := url.Values{}
	query.Set("q", strings.Join(p.cfg.Keywords, " OR "))
	query.Set("from", now.Add(-discoverWindow).Format("2006-01-02"))
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", "50")
	query.Set("apiKey", p.cfg.APIKey)

	var resp newsAPIResponse
	if err := p.fetcher.FetchJSON(ctx, p.cfg.APIURL+"?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("news discovery: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("news discovery: status %q", resp.Status)
	}

	items := make([]domain.RawNewsItem, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		pubDate := now
		if article.PublishedAt != "" {
			if parsed, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
				pubDate = parsed
			}
		}

		source := article.Source.Name
		if source == "" {
			source = "News"
		}
		sourceURL := ""
		if article.Source.ID != "" {
			sourceURL = "https://" + article.Source.ID
		}

		items = append(items, domain.RawNewsItem{
			Title:          article.Title,
			Source:         source,
			SourceURL:      sourceURL,
			URL:            article.URL,
			PublishedAt:    pubDate,
			Published:      pubDate.Local().Format("1月2日 15:04"),
			Image:          article.URLToImage,
			RawDescription: article.Description,
			Content:        article.Content,
		})
	}
	return items, nil
}
