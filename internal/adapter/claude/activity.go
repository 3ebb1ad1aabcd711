package claude

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forcelab-tw/forcedesk/internal/config"
)

const (
	// A file touched within this window counts as active.
	activityThreshold = 5 * time.Second
	// Active state lingers this long after the last detected touch so the
	// indicator does not flicker between writes.
	activityStickiness = 3 * time.Second
)

// ActivityMonitor reports whether the AI CLI tool appears to be running,
// inferred from recent writes to its session files.
type ActivityMonitor struct {
	cfg        config.ActivityConfig
	logger     *slog.Logger
	now        func() time.Time
	lastActive time.Time
}

// NewActivityMonitor wires the watched paths.
func NewActivityMonitor(cfg config.ActivityConfig, logger *slog.Logger) *ActivityMonitor {
	return &ActivityMonitor{cfg: cfg, logger: logger, now: time.Now}
}

// Poll returns the current activity flag. It never fails: unreadable paths
// just read as inactive.
func (m *ActivityMonitor) Poll(ctx context.Context) (bool, error) {
	now := m.now()

	if m.recentlyModified(m.cfg.HistoryFile, now) {
		m.lastActive = now
		return true, nil
	}
	if m.projectsTouched(now) {
		m.lastActive = now
		return true, nil
	}
	if !m.lastActive.IsZero() && now.Sub(m.lastActive) < activityStickiness {
		return true, nil
	}
	return false, nil
}

func (m *ActivityMonitor) recentlyModified(path string, now time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime()) < activityThreshold
}

// projectsTouched walks the projects tree looking for a recently written
// session log. The walk stops at the first hit.
func (m *ActivityMonitor) projectsTouched(now time.Time) bool {
	found := false
	err := filepath.WalkDir(m.cfg.ProjectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) < activityThreshold {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) && m.logger != nil {
		m.logger.Debug("projects walk failed", "dir", m.cfg.ProjectsDir, "error", err)
	}
	return found
}
