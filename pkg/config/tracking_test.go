package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTrackingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tracking file: %v", err)
	}
	return path
}

func TestLoadTracking(t *testing.T) {
	path := writeTrackingFile(t, `
usernames:
  - alice
  - "  bob  "
  - ""
playlists_to_track:
  - 37i9dQZF1DXcBWIGoYBM5M
`)

	tracking, err := LoadTracking(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(tracking.Usernames) != 2 {
		t.Fatalf("expected 2 usernames after cleaning, got %v", tracking.Usernames)
	}
	if tracking.Usernames[1] != "bob" {
		t.Fatalf("expected entries to be trimmed, got %q", tracking.Usernames[1])
	}
	if len(tracking.PlaylistsToTrack) != 1 {
		t.Fatalf("expected 1 playlist, got %v", tracking.PlaylistsToTrack)
	}
	if err := tracking.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadTrackingMissingFile(t *testing.T) {
	if _, err := LoadTracking(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestValidateRequiresTargets(t *testing.T) {
	path := writeTrackingFile(t, `
usernames: []
playlists_to_track: []
`)

	tracking, err := LoadTracking(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := tracking.Validate(); !errors.Is(err, ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}
