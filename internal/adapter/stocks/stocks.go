package stocks

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// Adapter polls the domestic index and the foreign indices concurrently;
// each query fails independently and overall success is whatever subset
// answered.
type Adapter struct {
	fetcher ports.Fetcher
	cfg     config.StocksConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdapter wires the fetcher and the tracked symbols.
func NewAdapter(fetcher ports.Fetcher, cfg config.StocksConfig, logger *slog.Logger) *Adapter {
	return &Adapter{fetcher: fetcher, cfg: cfg, logger: logger, now: time.Now}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				MarketState        string  `json:"marketState"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Poll fires all index queries at once and publishes the combined result
// only after every one has settled.
func (a *Adapter) Poll(ctx context.Context) (*domain.StockSnapshot, error) {
	results := make([]*domain.StockIndex, len(a.cfg.US)+1)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		results[0] = a.fetchIndex(groupCtx, a.cfg.Taiwan.Symbol, a.cfg.Taiwan.Name)
		return nil
	})
	for i, symbol := range a.cfg.US {
		i, symbol := i, symbol
		group.Go(func() error {
			results[i+1] = a.fetchIndex(groupCtx, symbol.Symbol, symbol.Name)
			return nil
		})
	}
	_ = group.Wait()

	foreign := make([]domain.StockIndex, 0, len(a.cfg.US))
	for _, index := range results[1:] {
		if index != nil {
			foreign = append(foreign, *index)
		}
	}

	return &domain.StockSnapshot{
		Taiwan:     results[0],
		US:         foreign,
		LastUpdate: a.now().Format("15:04"),
	}, nil
}

// fetchIndex resolves one symbol; any failure yields nil so siblings are
// unaffected.
func (a *Adapter) fetchIndex(ctx context.Context, symbol, name string) *domain.StockIndex {
	endpoint := fmt.Sprintf("%s/%s?interval=1d&range=1d", a.cfg.ChartURL, url.PathEscape(symbol))

	var data chartResponse
	if err := a.fetcher.FetchJSON(ctx, endpoint, &data); err != nil {
		a.debug("index fetch failed", "symbol", symbol, "error", err)
		return nil
	}

	if len(data.Chart.Result) == 0 {
		a.debug("index fetch returned no result", "symbol", symbol)
		return nil
	}

	meta := data.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	previousClose := meta.PreviousClose
	if previousClose == 0 {
		previousClose = meta.ChartPreviousClose
	}

	var change, changePercent float64
	if previousClose != 0 {
		change = price - previousClose
		changePercent = change / previousClose * 100
	}

	return &domain.StockIndex{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		MarketOpen:    meta.MarketState == "REGULAR",
	}
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
