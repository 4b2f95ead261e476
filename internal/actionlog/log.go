// Package actionlog persists the bounded, append-only history of execution
// cycle summaries as a single JSON array, capped at the most recent entries.
package actionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// MaxEntries is the retention cap: only the most recent MaxEntries cycle
// summaries survive, oldest evicted first.
const MaxEntries = 100

// Log is the append-only action history. Appends are a read-modify-write
// of the whole file, so callers must serialize access; the cycle driver
// guarantees this.
type Log struct {
	path string
	max  int
	log  zerolog.Logger
}

// New creates a log persisted at path.
func New(path string, log zerolog.Logger) *Log {
	return &Log{
		path: path,
		max:  MaxEntries,
		log:  log.With().Str("component", "action_log").Logger(),
	}
}

// Append adds a cycle summary, evicts entries beyond the cap and rewrites
// the file.
func (l *Log) Append(summary *domain.CycleSummary) error {
	entries, err := l.load()
	if err != nil {
		return err
	}

	entries = append(entries, *summary)
	if len(entries) > l.max {
		entries = entries[len(entries)-l.max:]
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal action log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write action log: %w", err)
	}

	l.log.Debug().Int("entries", len(entries)).Msg("Action log persisted")
	return nil
}

// History returns up to limit of the most recent summaries, oldest first.
// limit <= 0 returns everything retained.
func (l *Log) History(limit int) ([]domain.CycleSummary, error) {
	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (l *Log) load() ([]domain.CycleSummary, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read action log: %w", err)
	}

	var entries []domain.CycleSummary
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse action log: %w", err)
	}
	return entries, nil
}
