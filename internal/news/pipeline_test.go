package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
)

type stubFetcher struct {
	mu        sync.Mutex
	apiBody   string
	apiErr    error
	pageBody  string
	pageErr   error
	pageCalls int
	pageURLs  []string
}

func (s *stubFetcher) FetchJSON(ctx context.Context, url string, v any) error {
	if s.apiErr != nil {
		return s.apiErr
	}
	return json.Unmarshal([]byte(s.apiBody), v)
}

func (s *stubFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	s.pageCalls++
	s.pageURLs = append(s.pageURLs, url)
	s.mu.Unlock()
	return s.pageBody, s.pageErr
}

func (s *stubFetcher) FetchBytes(ctx context.Context, url string, header http.Header) ([]byte, string, error) {
	return nil, "", errors.New("unexpected FetchBytes call")
}

// stubTranslator prefixes titles so enriched slots are recognizable. An
// optional per-slot delay exercises delivery ordering.
type stubTranslator struct {
	delay map[string]time.Duration
}

func (s *stubTranslator) Translate(ctx context.Context, item domain.RawNewsItem) Translated {
	if d, ok := s.delay[item.Title]; ok {
		time.Sleep(d)
	}
	return Translated{Title: "譯:" + item.Title, Description: "摘要:" + item.RawDescription}
}

type stubImages struct {
	mu   sync.Mutex
	refs map[string]string
}

func (s *stubImages) Fetch(ctx context.Context, imageURL string, slot int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs == nil {
		return ""
	}
	return s.refs[imageURL]
}

func apiPayload(n int) string {
	articles := make([]string, n)
	for i := range articles {
		articles[i] = fmt.Sprintf(`{
			"title": "Article %[1]d",
			"source": {"id": "wire", "name": "Wire"},
			"url": "https://example.com/%[1]d",
			"publishedAt": "2026-01-15T08:00:00Z",
			"urlToImage": "https://cdn.example.com/%[1]d.jpg",
			"description": "Description %[1]d",
			"content": "Content %[1]d"
		}`, i)
	}
	return `{"status":"ok","articles":[` + strings.Join(articles, ",") + `]}`
}

type delivery struct {
	set    *domain.NewsSet
	update *domain.NewsItemUpdate
}

func collectDeliveries() (*sync.Mutex, *[]delivery, func(*domain.NewsSet), func(domain.NewsItemUpdate)) {
	var mu sync.Mutex
	var deliveries []delivery
	onSet := func(s *domain.NewsSet) {
		mu.Lock()
		deliveries = append(deliveries, delivery{set: s})
		mu.Unlock()
	}
	onItem := func(u domain.NewsItemUpdate) {
		mu.Lock()
		deliveries = append(deliveries, delivery{update: &u})
		mu.Unlock()
	}
	return &mu, &deliveries, onSet, onItem
}

func TestRunDeliversInitialThenIncremental(t *testing.T) {
	fetcher := &stubFetcher{apiBody: apiPayload(3)}
	runner := &fakeAIRunner{reply: "0,1,2"}
	images := &stubImages{refs: map[string]string{
		"https://cdn.example.com/0.jpg": "newsimg:///tmp/a.jpg",
	}}
	mu, deliveries, onSet, onItem := collectDeliveries()

	p := NewPipeline(fetcher, runner, &stubTranslator{}, images, config.NewsConfig{}, nil, onSet, onItem)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*deliveries) != 4 {
		t.Fatalf("got %d deliveries, want 1 set + 3 items", len(*deliveries))
	}

	initial := (*deliveries)[0].set
	if initial == nil {
		t.Fatal("first delivery must be the full set")
	}
	for i, item := range initial.Items {
		if !item.Processing {
			t.Fatalf("slot %d not marked processing", i)
		}
		if item.Image != fmt.Sprintf("https://cdn.example.com/%d.jpg", i) {
			t.Fatalf("slot %d initial image = %q", i, item.Image)
		}
	}

	first := (*deliveries)[1].update
	if first == nil || first.Index != 0 {
		t.Fatalf("second delivery = %+v, want item update for slot 0", (*deliveries)[1])
	}
	if first.Item.Title != "譯:Article 0" || first.Item.Processing {
		t.Fatalf("slot 0 update = %+v", first.Item)
	}
	if first.Item.Image != "newsimg:///tmp/a.jpg" {
		t.Fatalf("slot 0 image = %q", first.Item.Image)
	}
}

func TestRunSlotZeroDeliveredBeforeTail(t *testing.T) {
	fetcher := &stubFetcher{apiBody: apiPayload(4)}
	runner := &fakeAIRunner{reply: "0,1,2,3"}
	translator := &stubTranslator{delay: map[string]time.Duration{"Article 0": 30 * time.Millisecond}}
	mu, deliveries, onSet, onItem := collectDeliveries()

	p := NewPipeline(fetcher, runner, translator, &stubImages{}, config.NewsConfig{}, nil, onSet, onItem)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	var first *domain.NewsItemUpdate
	for _, d := range *deliveries {
		if d.update != nil {
			first = d.update
			break
		}
	}
	if first == nil || first.Index != 0 {
		t.Fatalf("first incremental delivery = %+v, want slot 0", first)
	}
}

func TestRunDescriptionPreviewTruncation(t *testing.T) {
	long := strings.Repeat("字", 150)
	payload := `{"status":"ok","articles":[{
		"title": "Long one",
		"source": {"name": "Wire"},
		"url": "https://example.com/long",
		"description": "` + long + `"
	}]}`
	fetcher := &stubFetcher{apiBody: payload}
	runner := &fakeAIRunner{reply: "0"}
	mu, deliveries, onSet, onItem := collectDeliveries()

	p := NewPipeline(fetcher, runner, &stubTranslator{}, &stubImages{}, config.NewsConfig{}, nil, onSet, onItem)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	preview := (*deliveries)[0].set.Items[0].Description
	if preview != strings.Repeat("字", 100)+"..." {
		t.Fatalf("preview = %q (len %d)", preview, len([]rune(preview)))
	}
}

func TestRunCurrentReflectsIncrementalUpdates(t *testing.T) {
	fetcher := &stubFetcher{apiBody: apiPayload(2)}
	runner := &fakeAIRunner{reply: "0,1"}

	p := NewPipeline(fetcher, runner, &stubTranslator{}, &stubImages{}, config.NewsConfig{}, nil, nil, nil)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	current := p.Current()
	if current == nil || len(current.Items) != 2 {
		t.Fatalf("current = %+v", current)
	}
	for i, item := range current.Items {
		if item.Processing {
			t.Fatalf("slot %d still processing after Run", i)
		}
		if item.Title != fmt.Sprintf("譯:Article %d", i) {
			t.Fatalf("slot %d title = %q", i, item.Title)
		}
	}

	// Pull reads are copies; mutating one must not leak into the retained set.
	current.Items[0].Title = "tampered"
	if p.Current().Items[0].Title == "tampered" {
		t.Fatal("Current must return a copy")
	}
}

func TestRunFallsBackToRSSOnce(t *testing.T) {
	now := time.Now()
	rss := `<item><title>RSS item</title><link>https://example.com/rss</link><pubDate>` +
		now.UTC().Format(time.RFC1123) + `</pubDate></item>`
	fetcher := &stubFetcher{apiBody: `{"status":"ok","articles":[]}`, pageBody: rss}
	runner := &fakeAIRunner{reply: "0"}
	mu, deliveries, onSet, onItem := collectDeliveries()

	feedURL := "https://rss.example.com/feed"
	p := NewPipeline(fetcher, runner, &stubTranslator{}, &stubImages{}, config.NewsConfig{RSSURL: feedURL}, nil, onSet, onItem)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	feedFetches := 0
	fetcher.mu.Lock()
	for _, u := range fetcher.pageURLs {
		if u == feedURL {
			feedFetches++
		}
	}
	fetcher.mu.Unlock()
	if feedFetches != 1 {
		t.Fatalf("RSS feed fetched %d times, want exactly once", feedFetches)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(*deliveries) == 0 || (*deliveries)[0].set.Items[0].Title != "RSS item" {
		t.Fatalf("deliveries = %+v", *deliveries)
	}
}

func TestRunEmptyFilterEndsSilently(t *testing.T) {
	fetcher := &stubFetcher{apiBody: apiPayload(3)}
	runner := &fakeAIRunner{reply: ""}
	mu, deliveries, onSet, onItem := collectDeliveries()

	p := NewPipeline(fetcher, runner, &stubTranslator{}, &stubImages{}, config.NewsConfig{}, nil, onSet, onItem)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*deliveries) != 0 {
		t.Fatalf("got %d deliveries, want none", len(*deliveries))
	}
	if p.Current() != nil {
		t.Fatal("no set should be retained")
	}
}
