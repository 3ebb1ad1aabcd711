package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// UsageAdapter shells out to the usage-reporting tool for monthly and daily
// aggregates.
type UsageAdapter struct {
	runner ports.CommandRunner
	cfg    config.UsageConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewUsageAdapter wires the command runner and tool invocation.
func NewUsageAdapter(runner ports.CommandRunner, cfg config.UsageConfig, logger *slog.Logger) *UsageAdapter {
	return &UsageAdapter{runner: runner, cfg: cfg, logger: logger, now: time.Now}
}

type monthlyReport struct {
	Totals struct {
		TotalCost   float64 `json:"totalCost"`
		TotalTokens int64   `json:"totalTokens"`
	} `json:"totals"`
	Monthly []struct {
		ModelsUsed []string `json:"modelsUsed"`
	} `json:"monthly"`
}

type dailyReport struct {
	Daily []struct {
		TotalCost   float64 `json:"totalCost"`
		TotalTokens int64   `json:"totalTokens"`
	} `json:"daily"`
}

// Poll queries monthly and daily usage. Both calls must succeed; any
// failure means "no data this round".
func (a *UsageAdapter) Poll(ctx context.Context) (*domain.UsageSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout.Std())
	defer cancel()

	var monthly monthlyReport
	if err := a.report(ctx, &monthly, "monthly", "--json"); err != nil {
		return nil, fmt.Errorf("monthly usage: %w", err)
	}

	today := a.now().Format("20060102")
	var daily dailyReport
	if err := a.report(ctx, &daily, "daily", "--json", "--since", today); err != nil {
		return nil, fmt.Errorf("daily usage: %w", err)
	}

	snapshot := &domain.UsageSnapshot{
		MonthlyTotalCost:   monthly.Totals.TotalCost,
		MonthlyTotalTokens: monthly.Totals.TotalTokens,
		ModelsUsed:         []string{},
		ResetDate:          resetDate(a.now()),
	}
	if len(monthly.Monthly) > 0 && monthly.Monthly[0].ModelsUsed != nil {
		snapshot.ModelsUsed = monthly.Monthly[0].ModelsUsed
	}
	if len(daily.Daily) > 0 {
		snapshot.TodayCost = daily.Daily[0].TotalCost
		snapshot.TodayTokens = daily.Daily[0].TotalTokens
	}
	return snapshot, nil
}

func (a *UsageAdapter) report(ctx context.Context, v any, args ...string) error {
	full := append(append([]string{}, a.cfg.Args...), args...)
	out, err := a.runner.Output(ctx, a.cfg.Command, full...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}
	return nil
}

// resetDate formats the first day of the following month, zh-TW style.
func resetDate(now time.Time) string {
	next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	return fmt.Sprintf("%d月%d日", int(next.Month()), next.Day())
}
