// Package petstate persists the virtual-pet state to a single JSON file.
package petstate

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/forcelab-tw/forcedesk/internal/domain"
)

// Store reads and writes the pet-state file. Both directions are
// best-effort: the surrounding flow never fails on pet-state I/O.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store backed by path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load returns the persisted state, or nil when the file is missing or
// unreadable.
func (s *Store) Load() *domain.PetState {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.debug("cannot read pet state", "path", s.path, "error", err)
		}
		return nil
	}
	var state domain.PetState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.debug("pet state file corrupt", "path", s.path, "error", err)
		return nil
	}
	return &state
}

// Save writes the state. A write error is logged and swallowed.
func (s *Store) Save(state *domain.PetState) {
	if state == nil {
		return
	}
	raw, err := json.Marshal(state)
	if err != nil {
		s.debug("cannot encode pet state", "error", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.debug("cannot write pet state", "path", s.path, "error", err)
	}
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
