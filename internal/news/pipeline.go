package news

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

const descriptionPreviewRunes = 100

// translator and imageCacher are what the enrichment stage needs from its
// collaborators; narrow so cycle tests can stub them.
type translator interface {
	Translate(ctx context.Context, item domain.RawNewsItem) Translated
}

type imageCacher interface {
	Fetch(ctx context.Context, imageURL string, slot int) string
}

// Pipeline runs the progressive discovery → filter → enrich cycle and
// retains the latest delivered set for pull reads.
type Pipeline struct {
	fetcher    ports.Fetcher
	runner     ports.AIRunner
	translator translator
	images     imageCacher
	cfg        config.NewsConfig
	logger     *slog.Logger
	now        func() time.Time

	onSet  func(*domain.NewsSet)
	onItem func(domain.NewsItemUpdate)

	mu      sync.Mutex
	current *domain.NewsSet
}

// NewPipeline wires the stages. onSet fires on the initial full-set
// delivery; onItem fires per enriched slot.
func NewPipeline(
	fetcher ports.Fetcher,
	runner ports.AIRunner,
	translator translator,
	images imageCacher,
	cfg config.NewsConfig,
	logger *slog.Logger,
	onSet func(*domain.NewsSet),
	onItem func(domain.NewsItemUpdate),
) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		runner:     runner,
		translator: translator,
		images:     images,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		onSet:      onSet,
		onItem:     onItem,
	}
}

// Current returns a copy of the last delivered set, nil before the first
// successful cycle.
func (p *Pipeline) Current() *domain.NewsSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

// Run executes one full cycle. A cycle with nothing to deliver ends
// silently; the previous set stays current.
func (p *Pipeline) Run(ctx context.Context) error {
	raw, err := p.discover(ctx)
	if err != nil {
		p.debug("primary news discovery failed", "error", err)
		raw = nil
	}
	if len(raw) == 0 {
		p.debug("no primary articles, trying RSS fallback")
		raw, err = fetchRSS(ctx, p.fetcher, p.cfg.RSSURL, p.now())
		if err != nil {
			return err
		}
	}
	if len(raw) == 0 {
		p.debug("no articles discovered this cycle")
		return nil
	}

	filtered := p.filter(ctx, raw)
	if len(filtered) == 0 {
		p.debug("filter selected no articles")
		return nil
	}

	set := p.deliverInitial(filtered)
	p.enrich(ctx, filtered, len(set.Items))
	return nil
}

// deliverInitial publishes every selected slot in processing state, with a
// preview cut of the raw description.
func (p *Pipeline) deliverInitial(items []domain.RawNewsItem) *domain.NewsSet {
	set := &domain.NewsSet{
		Items:      make([]domain.NewsItem, len(items)),
		LastUpdate: p.now().Format("15:04"),
	}
	for i, item := range items {
		set.Items[i] = domain.NewsItem{
			Title:       item.Title,
			Source:      item.Source,
			URL:         item.URL,
			PublishedAt: item.Published,
			Image:       item.Image,
			Description: previewOf(item.RawDescription),
			Processing:  true,
		}
	}

	p.mu.Lock()
	p.current = set
	p.mu.Unlock()

	if p.onSet != nil {
		p.onSet(set.Clone())
	}
	return set
}

// enrich completes slot 0 first, then fans the remaining slots out
// concurrently. Slot failures are independent.
func (p *Pipeline) enrich(ctx context.Context, items []domain.RawNewsItem, total int) {
	if total == 0 {
		return
	}
	p.enrichSlot(ctx, items[0], 0)

	if total == 1 {
		return
	}
	var g errgroup.Group
	for i := 1; i < total; i++ {
		i := i
		g.Go(func() error {
			p.enrichSlot(ctx, items[i], i)
			return nil
		})
	}
	_ = g.Wait()
}

// enrichSlot translates and caches the image for one slot concurrently,
// then delivers the finished item.
func (p *Pipeline) enrichSlot(ctx context.Context, item domain.RawNewsItem, slot int) {
	if item.Image == "" || item.RawDescription == "" {
		meta := fetchPageMeta(ctx, p.fetcher, item.URL)
		if item.Image == "" {
			item.Image = meta.Image
		}
		if item.RawDescription == "" {
			item.RawDescription = meta.Description
		}
	}

	var (
		translated Translated
		imageRef   string
	)
	var g errgroup.Group
	g.Go(func() error {
		translated = p.translator.Translate(ctx, item)
		return nil
	})
	g.Go(func() error {
		if item.Image != "" {
			imageRef = p.images.Fetch(ctx, item.Image, slot)
		}
		return nil
	})
	_ = g.Wait()

	updated := domain.NewsItem{
		Title:       translated.Title,
		Source:      item.Source,
		URL:         item.URL,
		PublishedAt: item.Published,
		Image:       imageRef,
		Description: translated.Description,
		Processing:  false,
	}

	p.mu.Lock()
	if p.current != nil && slot < len(p.current.Items) {
		p.current.Items[slot] = updated
	}
	p.mu.Unlock()

	if p.onItem != nil {
		p.onItem(domain.NewsItemUpdate{Index: slot, Item: updated})
	}
}

// previewOf cuts the raw description to a short teaser.
func previewOf(description string) string {
	runes := []rune(description)
	if len(runes) <= descriptionPreviewRunes {
		return description
	}
	return string(runes[:descriptionPreviewRunes]) + "..."
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
