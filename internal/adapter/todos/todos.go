package todos

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
	"github.com/forcelab-tw/forcedesk/internal/domain"
	"github.com/forcelab-tw/forcedesk/internal/ports"
)

// remindersScript asks the platform reminders app for today's items, each
// printed as "[x]HH:MM|name" ("[ ]" when open, empty time when due at 00:00).
const remindersScript = `
set output to ""
set todayStart to current date
set time of todayStart to 0
set todayEnd to todayStart + 1 * days

tell application "Reminders"
  repeat with reminderList in lists
    set listReminders to reminders of reminderList
    repeat with r in listReminders
      set rDueDate to due date of r
      set rCompleted to completed of r
      set rName to name of r

      if rDueDate is not missing value then
        if rDueDate ≥ todayStart and rDueDate < todayEnd then
          set rHours to hours of rDueDate
          set rMinutes to minutes of rDueDate
          set timeStr to ""

          if rHours > 0 or rMinutes > 0 then
            if rHours < 10 then
              set timeStr to "0" & rHours
            else
              set timeStr to rHours as string
            end if
            set timeStr to timeStr & ":"
            if rMinutes < 10 then
              set timeStr to timeStr & "0" & rMinutes
            else
              set timeStr to timeStr & rMinutes
            end if
          end if

          if rCompleted then
            set output to output & "[x]" & timeStr & "|" & rName & linefeed
          else
            set output to output & "[ ]" & timeStr & "|" & rName & linefeed
          end if
        end if
      end if
    end repeat
  end repeat
end tell

return output
`

// Adapter reads today's todo items, preferring the platform reminders app
// and falling back to a flat text file. It never fails a poll: total failure
// yields an empty list.
type Adapter struct {
	runner ports.CommandRunner
	cfg    config.TodosConfig
	logger *slog.Logger
}

// NewAdapter wires the command runner used for the reminders call.
func NewAdapter(runner ports.CommandRunner, cfg config.TodosConfig, logger *slog.Logger) *Adapter {
	return &Adapter{runner: runner, cfg: cfg, logger: logger}
}

// Poll returns today's todos. The error is always nil: an empty list is the
// documented failure output so the overlay clears rather than freezes.
func (a *Adapter) Poll(ctx context.Context) ([]domain.TodoItem, error) {
	if items := a.fromReminders(ctx); len(items) > 0 {
		return items, nil
	}

	content, err := os.ReadFile(a.cfg.FilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			a.debug("cannot read todos file", "path", a.cfg.FilePath, "error", err)
		}
		return []domain.TodoItem{}, nil
	}
	return Parse(string(content)), nil
}

// fromReminders runs the reminders script, time-boxed since the call can
// hang when the app shows a permission dialog.
func (a *Adapter) fromReminders(ctx context.Context) []domain.TodoItem {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RemindersTimeout.Std())
	defer cancel()

	out, err := a.runner.Output(ctx, "osascript", "-e", remindersScript)
	if err != nil {
		a.debug("reminders lookup failed", "error", err)
		return nil
	}
	return parseReminderLines(string(out))
}

// parseReminderLines decodes the script's "[x]HH:MM|name" line format.
func parseReminderLines(output string) []domain.TodoItem {
	var items []domain.TodoItem
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < 3 {
			continue
		}
		marker := line[:3]
		completed := marker == "[x]" || marker == "[X]"
		rest := line[3:]
		pipe := strings.Index(rest, "|")
		if pipe < 0 {
			items = append(items, domain.TodoItem{Text: rest, Completed: completed})
			continue
		}
		items = append(items, domain.TodoItem{
			Text:      rest[pipe+1:],
			Completed: completed,
			Time:      rest[:pipe],
		})
	}
	return items
}

// Parse decodes the flat fallback file. Recognized line forms:
// "[x] t" done, "[ ] t" open, "- [x] t" / "- [ ] t" likewise, "- t" open,
// "# ..." ignored, any other non-blank line open. A leading "HH:MM|" on the
// text carries a due time.
func Parse(content string) []domain.TodoItem {
	items := []domain.TodoItem{}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		var text string
		var completed bool
		switch {
		case strings.HasPrefix(trimmed, "[x]") || strings.HasPrefix(trimmed, "[X]"):
			text, completed = strings.TrimSpace(trimmed[3:]), true
		case strings.HasPrefix(trimmed, "[ ]"):
			text = strings.TrimSpace(trimmed[3:])
		case strings.HasPrefix(trimmed, "- [x]") || strings.HasPrefix(trimmed, "- [X]"):
			text, completed = strings.TrimSpace(trimmed[5:]), true
		case strings.HasPrefix(trimmed, "- [ ]"):
			text = strings.TrimSpace(trimmed[5:])
		case strings.HasPrefix(trimmed, "-"):
			text = strings.TrimSpace(trimmed[1:])
		default:
			text = trimmed
		}

		item := domain.TodoItem{Text: text, Completed: completed}
		if due, rest, ok := splitTimePrefix(text); ok {
			item.Time = due
			item.Text = rest
		}
		items = append(items, item)
	}
	return items
}

// splitTimePrefix extracts an "HH:MM|" due-time prefix from a todo text.
func splitTimePrefix(text string) (due, rest string, ok bool) {
	pipe := strings.Index(text, "|")
	if pipe < 0 {
		return "", "", false
	}
	candidate := text[:pipe]
	if _, err := time.Parse("15:04", candidate); err != nil {
		return "", "", false
	}
	return candidate, text[pipe+1:], true
}

func (a *Adapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
