package autosave

import (
	"os"
	"path/filepath"
	"time"
)

// Manager periodically writes buffer contents to backup files next to
// the originals, so a crash loses at most one interval of work.
type Manager struct {
	enabled  bool
	interval time.Duration
	last     time.Time
}

func NewManager(enabled bool, intervalMin int) *Manager {
	if intervalMin < 1 {
		intervalMin = 1
	}
	return &Manager{
		enabled:  enabled,
		interval: time.Duration(intervalMin) * time.Minute,
		last:     time.Now(),
	}
}

func (m *Manager) Enabled() bool { return m.enabled }

// Due reports whether a backup cycle should run, and arms the next one.
func (m *Manager) Due(now time.Time) bool {
	if !m.enabled {
		return false
	}
	if now.Sub(m.last) < m.interval {
		return false
	}
	m.last = now
	return true
}

// BackupPath returns the backup file path for a document path.
// Backups live next to the original as ".#<name>".
func BackupPath(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, ".#"+base)
}

// Write stores contents in the backup file for path.
func Write(path, contents string) error {
	return os.WriteFile(BackupPath(path), []byte(contents), 0o644)
}

// Remove deletes the backup file for path, if any.
func Remove(path string) {
	_ = os.Remove(BackupPath(path))
}
