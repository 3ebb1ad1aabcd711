package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/domain"
)

// zh-TW long weekday names, indexed by time.Weekday.
var weekdays = [...]string{
	"星期日",
	"星期一",
	"星期二",
	"星期三",
	"星期四",
	"星期五",
	"星期六",
}

// Adapter formats the local wall clock for the overlay.
type Adapter struct {
	now func() time.Time
}

// NewAdapter returns a clock sampler.
func NewAdapter() *Adapter {
	return &Adapter{now: time.Now}
}

// Poll formats the current local time and date.
func (a *Adapter) Poll(ctx context.Context) (*domain.ClockSnapshot, error) {
	now := a.now()
	return &domain.ClockSnapshot{
		Current: now.Format("15:04:05"),
		Date:    formatDate(now),
	}, nil
}

// formatDate renders a zh-TW long date, e.g. "2026年1月15日 星期四".
func formatDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日 %s", t.Year(), int(t.Month()), t.Day(), weekdays[t.Weekday()])
}
