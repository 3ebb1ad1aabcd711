package horoscope

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// Adapter polls a single horoscope endpoint. The payload is trusted only
// when the service-specific success code checks out; absent fields default
// to empty values rather than propagating as missing.
type Adapter struct {
	fetcher ports.Fetcher
	cfg     config.HoroscopeConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdapter wires the fetcher and endpoint.
func NewAdapter(fetcher ports.Fetcher, cfg config.HoroscopeConfig, logger *slog.Logger) *Adapter {
	return &Adapter{fetcher: fetcher, cfg: cfg, logger: logger, now: time.Now}
}

type apiResponse struct {
	Code int `json:"code"`
	Data *struct {
		Title              string              `json:"title"`
		Type               string              `json:"type"`
		Fortune            *domain.Fortune     `json:"fortune"`
		FortuneText        *domain.FortuneText `json:"fortunetext"`
		Index              *domain.FortuneText `json:"index"`
		LuckyColor         string              `json:"luckycolor"`
		LuckyConstellation string              `json:"luckyconstellation"`
		LuckyNumber        string              `json:"luckynumber"`
	} `json:"data"`
}

// Poll returns today's horoscope snapshot.
func (a *Adapter) Poll(ctx context.Context) (*domain.HoroscopeSnapshot, error) {
	var resp apiResponse
	if err := a.fetcher.FetchJSON(ctx, a.cfg.URL, &resp); err != nil {
		return nil, fmt.Errorf("horoscope fetch: %w", err)
	}

	if resp.Code != 200 || resp.Data == nil {
		return nil, fmt.Errorf("horoscope service code %d", resp.Code)
	}

	data := resp.Data
	snapshot := &domain.HoroscopeSnapshot{
		Title:              data.Title,
		Type:               data.Type,
		LuckyColor:         data.LuckyColor,
		LuckyConstellation: data.LuckyConstellation,
		LuckyNumber:        data.LuckyNumber,
		LastUpdate:         a.now().Format("15:04"),
	}
	if snapshot.Title == "" {
		snapshot.Title = a.cfg.DefaultSign
	}
	if snapshot.Type == "" {
		snapshot.Type = "today"
	}
	if data.Fortune != nil {
		snapshot.Fortune = *data.Fortune
	}
	if data.FortuneText != nil {
		snapshot.FortuneText = *data.FortuneText
	}
	if data.Index != nil {
		snapshot.Index = *data.Index
	}

	return snapshot, nil
}
