// Package manifest persists the record of resources a population run
// created. The manifest is the only source of truth for what rollback may
// delete: every id in it corresponds to a resource the API confirmed, and
// rollback consumes it in reverse-dependency order.
package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
)

// DefaultFile is the manifest filename written next to the tool.
const DefaultFile = "population_manifest.json"

// User identifies one created synthetic user.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	TestID string `json:"test_id"`
}

// Manifest records every resource a population run created, plus the run's
// counters. Stats are informational only; rollback never reads them.
type Manifest struct {
	CreatedAt time.Time          `json:"created_at"`
	Users     []User             `json:"users"`
	Bookings  []string           `json:"bookings"`
	Rentals   []string           `json:"rentals"`
	Packages  []string           `json:"packages"`
	Stats     map[string]float64 `json:"stats"`
}

// Save writes the manifest, overwriting any previous run's file.
func Save(fsys zfilesystem.ReadWriteFileFS, path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := fsys.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Load reads a manifest. A missing file surfaces as fs.ErrNotExist through
// the wrapped error so callers can distinguish it from corrupt content.
func Load(fsys zfilesystem.ReadWriteFileFS, path string) (Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// Backup copies the manifest to a timestamped sibling before destructive
// use and returns the backup path.
func Backup(fsys zfilesystem.ReadWriteFileFS, path string, now time.Time) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	backup := fmt.Sprintf("%s.backup.%s", path, now.Format("20060102_150405"))
	if err := fsys.WriteFile(backup, data, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return backup, nil
}

// Remove deletes the manifest file.
func Remove(fsys zfilesystem.ReadWriteFileFS, path string) error {
	if err := fsys.Remove(path); err != nil {
		return fmt.Errorf("remove manifest: %w", err)
	}
	return nil
}
