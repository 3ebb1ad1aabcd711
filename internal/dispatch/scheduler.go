package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Source is one scheduled data feed. Poll returns the payload to retain and
// publish; a nil payload with nil error means "nothing to emit this tick".
type Source struct {
	Name         string
	Topic        Topic
	Interval     time.Duration
	InitialDelay time.Duration
	Poll         func(ctx context.Context) (any, error)
}

type scheduledSource struct {
	Source
	holder   Holder[any]
	inflight atomic.Bool
	refresh  chan struct{}
}

// Scheduler runs one polling loop per registered source and publishes
// successful snapshots on the bus.
type Scheduler struct {
	bus     *Bus
	logger  *slog.Logger
	mu      sync.Mutex
	sources map[string]*scheduledSource
}

// NewScheduler returns a scheduler publishing on bus.
func NewScheduler(bus *Bus, logger *slog.Logger) *Scheduler {
	return &Scheduler{bus: bus, logger: logger, sources: make(map[string]*scheduledSource)}
}

// Register adds a source. Must be called before Run.
func (s *Scheduler) Register(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.Name] = &scheduledSource{
		Source:  src,
		refresh: make(chan struct{}, 1),
	}
}

// Run starts every source loop and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	sources := make([]*scheduledSource, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, src)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, src := range sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runSource(ctx, src)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) runSource(ctx context.Context, src *scheduledSource) {
	if src.InitialDelay > 0 {
		timer := time.NewTimer(src.InitialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	s.poll(ctx, src)

	ticker := time.NewTicker(src.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx, src)
		case <-src.refresh:
			s.poll(ctx, src)
		}
	}
}

// poll runs one tick. A tick arriving while the previous poll is still in
// flight is skipped rather than queued.
func (s *Scheduler) poll(ctx context.Context, src *scheduledSource) {
	if !src.inflight.CompareAndSwap(false, true) {
		s.debug("skipping overlapping tick", "source", src.Name)
		return
	}
	defer src.inflight.Store(false)

	payload, err := src.Poll(ctx)
	if err != nil {
		s.debug("poll failed", "source", src.Name, "error", err)
		return
	}
	if payload == nil {
		return
	}

	src.holder.Set(payload)
	s.bus.Publish(src.Topic, payload)
}

// Current answers a pull request from the retained snapshot without
// re-polling. The second result is false before the first successful poll.
func (s *Scheduler) Current(name string) (any, bool) {
	s.mu.Lock()
	src, ok := s.sources[name]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return src.holder.Get()
}

// RefreshNow requests an out-of-band poll. The request is dropped if one is
// already pending.
func (s *Scheduler) RefreshNow(name string) {
	s.mu.Lock()
	src, ok := s.sources[name]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case src.refresh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
