// Package app assembles the data core: adapters, the news pipeline, the
// dispatcher and the pet-state store.
package app

import (
	"context"
	"log/slog"

	"github.com/forcelab-tw/forcedesk/internal/adapter/claude"
	"github.com/forcelab-tw/forcedesk/internal/adapter/clock"
	"github.com/forcelab-tw/forcedesk/internal/adapter/horoscope"
	"github.com/forcelab-tw/forcedesk/internal/adapter/stocks"
	"github.com/forcelab-tw/forcedesk/internal/adapter/sysinfo"
	"github.com/forcelab-tw/forcedesk/internal/adapter/todos"
	"github.com/forcelab-tw/forcedesk/internal/adapter/vibe"
	"github.com/forcelab-tw/forcedesk/internal/adapter/weather"
	"github.com/forcelab-tw/forcedesk/internal/aicli"
	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/dispatch"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/execx"
	"github.com/forcelab-tw/forcedesk/internal/httpfetch"
	"github.com/forcelab-tw/forcedesk/internal/news"
	"github.com/forcelab-tw/forcedesk/internal/news/imagecache"
	"github.com/forcelab-tw/forcedesk/internal/petstate"
)

// Source names used for registration, pull reads and refresh requests.
const (
	SourceWeather   = "weather"
	SourceStocks    = "stocks"
	SourceHoroscope = "horoscope"
	SourceVibe      = "vibe"
	SourceTodos     = "todos"
	SourceUsage     = "usage"
	SourceActivity  = "activity"
	SourceSystem    = "system"
	SourceClock     = "clock"
	SourceNews      = "news"
)

// App owns the wired data core.
type App struct {
	cfg       config.Config
	logger    *slog.Logger
	bus       *dispatch.Bus
	scheduler *dispatch.Scheduler
	pipeline  *news.Pipeline
	pets      *petstate.Store
}

// New wires every component from the configuration.
func New(cfg config.Config, logger *slog.Logger) *App {
	fetcher := httpfetch.NewClient(cfg.HTTP, logger)
	runner := aicli.NewRunner(cfg.AI, logger)
	commands := execx.Runner{}

	bus := dispatch.NewBus(logger)
	scheduler := dispatch.NewScheduler(bus, logger)

	weatherAdapter := weather.NewAdapter(fetcher, cfg.Weather, logger)
	stocksAdapter := stocks.NewAdapter(fetcher, cfg.Stocks, logger)
	horoscopeAdapter := horoscope.NewAdapter(fetcher, cfg.Horoscope, logger)
	todosAdapter := todos.NewAdapter(commands, cfg.Todos, logger)
	usageAdapter := claude.NewUsageAdapter(commands, cfg.Usage, logger)
	activityMonitor := claude.NewActivityMonitor(cfg.Activity, logger)
	systemAdapter := sysinfo.NewAdapter(logger)
	clockAdapter := clock.NewAdapter()

	// The vibe prompt reads the last polled horoscope sign, hence its
	// initial delay relative to the horoscope source.
	vibeAdapter := vibe.NewAdapter(runner, func() string {
		if value, ok := scheduler.Current(SourceHoroscope); ok {
			if snapshot, ok := value.(*domain.HoroscopeSnapshot); ok {
				return snapshot.Title
			}
		}
		return ""
	}, cfg.Horoscope.DefaultSign, logger)

	translator := news.NewTranslator(runner, logger)
	images := imagecache.New(fetcher, cfg.News.CacheDir, logger)
	pipeline := news.NewPipeline(fetcher, runner, translator, images, cfg.News, logger,
		func(set *domain.NewsSet) { bus.Publish(dispatch.TopicNewsSet, set) },
		func(update domain.NewsItemUpdate) { bus.Publish(dispatch.TopicNewsItem, update) },
	)

	scheduler.Register(dispatch.Source{
		Name: SourceWeather, Topic: dispatch.TopicWeather, Interval: cfg.Intervals.Weather.Std(),
		Poll: func(ctx context.Context) (any, error) {
			snapshot, err := weatherAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return snapshot, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceStocks, Topic: dispatch.TopicStocks, Interval: cfg.Intervals.Stocks.Std(),
		Poll: func(ctx context.Context) (any, error) {
			snapshot, err := stocksAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return snapshot, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceHoroscope, Topic: dispatch.TopicHoro, Interval: cfg.Intervals.Horoscope.Std(),
		Poll: func(ctx context.Context) (any, error) {
			snapshot, err := horoscopeAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return snapshot, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceVibe, Topic: dispatch.TopicVibe, Interval: cfg.Intervals.Vibe.Std(),
		InitialDelay: cfg.Intervals.VibeDelay.Std(),
		Poll: func(ctx context.Context) (any, error) {
			snapshot, err := vibeAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return snapshot, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceTodos, Topic: dispatch.TopicTodos, Interval: cfg.Intervals.Todos.Std(),
		Poll: func(ctx context.Context) (any, error) {
			items, err := todosAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			// An empty list is a legitimate payload: it clears the widget.
			return items, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceUsage, Topic: dispatch.TopicUsage, Interval: cfg.Intervals.Usage.Std(),
		Poll: func(ctx context.Context) (any, error) {
			snapshot, err := usageAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return snapshot, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceActivity, Topic: dispatch.TopicActivity, Interval: cfg.Intervals.Activity.Std(),
		Poll: func(ctx context.Context) (any, error) {
			active, err := activityMonitor.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return active, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceSystem, Topic: dispatch.TopicSystem, Interval: cfg.Intervals.System.Std(),
		Poll: func(ctx context.Context) (any, error) {
			snapshot, err := systemAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return snapshot, nil
		},
	})
	scheduler.Register(dispatch.Source{
		Name: SourceClock, Topic: dispatch.TopicClock, Interval: cfg.Intervals.Clock.Std(),
		Poll: func(ctx context.Context) (any, error) {
			snapshot, err := clockAdapter.Poll(ctx)
			if err != nil {
				return nil, err
			}
			return snapshot, nil
		},
	})
	// The news pipeline delivers through its own callbacks; the scheduler
	// only drives the cycle cadence and retains the full set for pulls.
	scheduler.Register(dispatch.Source{
		Name: SourceNews, Topic: dispatch.TopicNewsSet, Interval: cfg.Intervals.News.Std(),
		Poll: func(ctx context.Context) (any, error) {
			if err := pipeline.Run(ctx); err != nil {
				return nil, err
			}
			return nil, nil
		},
	})

	return &App{
		cfg:       cfg,
		logger:    logger,
		bus:       bus,
		scheduler: scheduler,
		pipeline:  pipeline,
		pets:      petstate.NewStore(cfg.Pet.StatePath, logger),
	}
}

// Bus exposes the update channel for subscribers.
func (a *App) Bus() *dispatch.Bus {
	return a.bus
}

// Current answers a pull request from the retained snapshots. News pulls are
// answered by the pipeline so incremental enrichment is reflected.
func (a *App) Current(source string) (any, bool) {
	if source == SourceNews {
		set := a.pipeline.Current()
		return set, set != nil
	}
	return a.scheduler.Current(source)
}

// RefreshNow re-polls a source out of band.
func (a *App) RefreshNow(source string) {
	a.scheduler.RefreshNow(source)
}

// PetState loads the persisted pet state, nil when absent.
func (a *App) PetState() *domain.PetState {
	return a.pets.Load()
}

// SavePetState persists the pet state best-effort.
func (a *App) SavePetState(state *domain.PetState) {
	a.pets.Save(state)
}

// Run starts all polling loops and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	a.logger.Info("data core starting", "newsInterval", a.cfg.Intervals.News.Std().String())
	a.scheduler.Run(ctx)
	a.logger.Info("data core stopped")
}
