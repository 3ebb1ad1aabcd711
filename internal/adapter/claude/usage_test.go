package claude

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
)

type fakeUsageRunner struct {
	monthly string
	daily   string
	err     error
	calls   [][]string
}

func (f *fakeUsageRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	for _, arg := range args {
		if arg == "monthly" {
			return []byte(f.monthly), nil
		}
	}
	return []byte(f.daily), nil
}

func usageConfig() config.UsageConfig {
	return config.UsageConfig{
		Command: "npx",
		Args:    []string{"ccusage"},
		Timeout: config.Duration(30 * time.Second),
	}
}

func TestUsagePollAggregates(t *testing.T) {
	runner := &fakeUsageRunner{
		monthly: `{"totals":{"totalCost":12.5,"totalTokens":420000},"monthly":[{"modelsUsed":["claude-sonnet","claude-haiku"]}]}`,
		daily:   `{"daily":[{"totalCost":1.25,"totalTokens":30000}]}`,
	}
	a := NewUsageAdapter(runner, usageConfig(), nil)
	a.now = func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.Local) }

	got, err := a.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}

	want := &domain.UsageSnapshot{
		MonthlyTotalCost:   12.5,
		MonthlyTotalTokens: 420000,
		TodayCost:          1.25,
		TodayTokens:        30000,
		ModelsUsed:         []string{"claude-sonnet", "claude-haiku"},
		ResetDate:          "2月1日",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Poll:\n got %+v\nwant %+v", got, want)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(runner.calls))
	}
	daily := strings.Join(runner.calls[1], " ")
	if !strings.Contains(daily, "--since 20260115") {
		t.Fatalf("daily call missing --since: %q", daily)
	}
}

func TestUsagePollEmptyDaily(t *testing.T) {
	runner := &fakeUsageRunner{
		monthly: `{"totals":{"totalCost":3,"totalTokens":1000}}`,
		daily:   `{"daily":[]}`,
	}
	a := NewUsageAdapter(runner, usageConfig(), nil)

	got, err := a.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got.TodayCost != 0 || got.TodayTokens != 0 {
		t.Fatalf("expected zero today figures, got %+v", got)
	}
	if got.ModelsUsed == nil || len(got.ModelsUsed) != 0 {
		t.Fatalf("expected empty models list, got %#v", got.ModelsUsed)
	}
}

func TestUsagePollToolFailure(t *testing.T) {
	a := NewUsageAdapter(&fakeUsageRunner{err: errors.New("npx missing")}, usageConfig(), nil)
	if _, err := a.Poll(context.Background()); err == nil {
		t.Fatal("expected error when the tool fails")
	}
}

func TestResetDateYearRollover(t *testing.T) {
	got := resetDate(time.Date(2026, 12, 20, 0, 0, 0, 0, time.Local))
	if got != "1月1日" {
		t.Fatalf("resetDate = %q, want 1月1日", got)
	}
}
