package stocks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/httpfetch"
)

func testFetcher() *httpfetch.Client {
	return httpfetch.NewClient(config.HTTPConfig{
		PageTimeout:  config.Duration(5 * time.Second),
		JSONTimeout:  config.Duration(5 * time.Second),
		MaxPageBytes: 500_000,
		UserAgent:    "forcedesk-test",
	}, nil)
}

func chartBody(price, previousClose float64, state string) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%g,"previousClose":%g,"marketState":%q}}]}}`,
		price, previousClose, state)
}

func TestPollCombinesIndices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "TWII"):
			_, _ = w.Write([]byte(chartBody(23000, 22800, "REGULAR")))
		case strings.Contains(r.URL.Path, "GSPC"):
			_, _ = w.Write([]byte(chartBody(6400, 6500, "CLOSED")))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := NewAdapter(testFetcher(), config.StocksConfig{
		ChartURL: server.URL + "/v8/finance/chart",
		Taiwan:   config.SymbolConfig{Symbol: "^TWII", Name: "加權指數"},
		US: []config.SymbolConfig{
			{Symbol: "^GSPC", Name: "S&P 500"},
			{Symbol: "^DJI", Name: "道瓊"},
		},
	}, nil)

	snapshot, err := adapter.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}

	if snapshot.Taiwan == nil {
		t.Fatal("expected domestic index")
	}
	if !snapshot.Taiwan.MarketOpen {
		t.Fatal("expected domestic market open")
	}
	wantChange := 23000.0 - 22800.0
	if snapshot.Taiwan.Change != wantChange {
		t.Fatalf("change = %v, want %v", snapshot.Taiwan.Change, wantChange)
	}

	// ^DJI failed, so only the successful subset remains.
	if len(snapshot.US) != 1 {
		t.Fatalf("expected 1 foreign index, got %d", len(snapshot.US))
	}
	if snapshot.US[0].Symbol != "^GSPC" {
		t.Fatalf("unexpected foreign index: %s", snapshot.US[0].Symbol)
	}
	if snapshot.US[0].ChangePercent >= 0 {
		t.Fatalf("expected negative change percent, got %v", snapshot.US[0].ChangePercent)
	}
}

func TestPollZeroPreviousClose(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":100,"marketState":"REGULAR"}}]}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(testFetcher(), config.StocksConfig{
		ChartURL: server.URL + "/chart",
		Taiwan:   config.SymbolConfig{Symbol: "^TWII", Name: "加權指數"},
	}, nil)

	snapshot, err := adapter.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}

	if snapshot.Taiwan == nil {
		t.Fatal("expected domestic index")
	}
	if snapshot.Taiwan.Change != 0 || snapshot.Taiwan.ChangePercent != 0 {
		t.Fatalf("expected zero change with absent previousClose, got %v / %v",
			snapshot.Taiwan.Change, snapshot.Taiwan.ChangePercent)
	}
}

func TestPollAllIndicesDown(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(testFetcher(), config.StocksConfig{
		ChartURL: "http://127.0.0.1:1/chart",
		Taiwan:   config.SymbolConfig{Symbol: "^TWII", Name: "加權指數"},
		US:       []config.SymbolConfig{{Symbol: "^GSPC", Name: "S&P 500"}},
	}, nil)

	snapshot, err := adapter.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	if snapshot.Taiwan != nil || len(snapshot.US) != 0 {
		t.Fatal("expected empty snapshot when every index fails")
	}
}
