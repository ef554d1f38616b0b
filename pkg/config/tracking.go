package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrNoTargets is returned when the tracking file names neither usernames nor
// playlist ids.
var ErrNoTargets = errors.New("configuration must contain either usernames or playlists_to_track")

// Tracking holds the sync targets read from the yaml tracking file.
type Tracking struct {
	Usernames        []string `koanf:"usernames"`
	PlaylistsToTrack []string `koanf:"playlists_to_track"`
}

// LoadTracking reads and parses the tracking yaml file. Entries are trimmed
// and blank entries dropped.
func LoadTracking(path string) (*Tracking, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load tracking config %q: %w", path, err)
	}

	var t Tracking
	if err := k.Unmarshal("", &t); err != nil {
		return nil, fmt.Errorf("parse tracking config %q: %w", path, err)
	}

	t.Usernames = cleanList(t.Usernames)
	t.PlaylistsToTrack = cleanList(t.PlaylistsToTrack)
	return &t, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (t *Tracking) Validate() error {
	if len(t.Usernames) == 0 && len(t.PlaylistsToTrack) == 0 {
		return ErrNoTargets
	}
	return nil
}
