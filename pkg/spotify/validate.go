package spotify

import (
	"context"
	"errors"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

// Validation is the outcome of checking a remote entity. Valid means the id
// refers to an existing entity; Accessible means the current credentials can
// read it. Err carries the human-readable reason when either is false.
type Validation struct {
	Valid      bool
	Accessible bool
	Err        string
}

type PlaylistValidation struct {
	Validation
	Playlist *models.Playlist
}

type UserValidation struct {
	Validation
	UserID      string
	DisplayName string
}

// Accessibility reports whether a user's playlist listing can be read at all.
type Accessibility struct {
	Accessible    bool
	PlaylistCount int
	Err           string
}

// NormalizePlaylistID accepts a bare id, a spotify: URI or an open.spotify.com
// URL and returns the bare playlist id.
func NormalizePlaylistID(raw string) string {
	id := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(id, "spotify:playlist:"):
		parts := strings.Split(id, ":")
		id = parts[len(parts)-1]
	case strings.HasPrefix(id, "https://open.spotify.com/playlist/"):
		id = strings.TrimPrefix(id, "https://open.spotify.com/playlist/")
		if i := strings.IndexByte(id, '?'); i >= 0 {
			id = id[:i]
		}
	}
	return id
}

// ValidatePlaylist checks that a playlist id parses, exists and is readable.
// API status codes are mapped into the Validation; the returned error is
// reserved for fatal conditions (rate-limit breaker, exhausted retries).
func (c *Client) ValidatePlaylist(ctx context.Context, raw string) (PlaylistValidation, error) {
	id := NormalizePlaylistID(raw)
	if id == "" {
		return PlaylistValidation{Validation: Validation{
			Err: "invalid playlist ID format: ID must be a non-empty string",
		}}, nil
	}

	var fp *spotifyapi.FullPlaylist
	err := c.call("validate playlist", func() error {
		var err error
		fp, err = c.api.GetPlaylist(ctx, spotifyapi.ID(id),
			spotifyapi.Fields("id,name,description,public,collaborative,snapshot_id,owner.id"))
		return err
	})
	if err != nil {
		if v, ok := validationFromError(err, "Playlist"); ok {
			return PlaylistValidation{Validation: v}, nil
		}
		return PlaylistValidation{}, err
	}

	p := fullPlaylistModel(fp)
	return PlaylistValidation{
		Validation: Validation{Valid: true, Accessible: true},
		Playlist:   &p,
	}, nil
}

// ValidateUser checks that a user id exists and its public profile is
// readable.
func (c *Client) ValidateUser(ctx context.Context, raw string) (UserValidation, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return UserValidation{Validation: Validation{
			Err: "invalid user ID format: ID must be a non-empty string",
		}}, nil
	}

	var user *spotifyapi.User
	err := c.call("validate user", func() error {
		var err error
		user, err = c.api.GetUsersPublicProfile(ctx, spotifyapi.ID(id))
		return err
	})
	if err != nil {
		if v, ok := validationFromError(err, "User"); ok {
			return UserValidation{Validation: v}, nil
		}
		return UserValidation{}, err
	}

	return UserValidation{
		Validation:  Validation{Valid: true, Accessible: true},
		UserID:      user.ID,
		DisplayName: user.DisplayName,
	}, nil
}

// ValidateUserPlaylistsAccessible probes the user's playlist listing with a
// single-item page before committing to the full fetch.
func (c *Client) ValidateUserPlaylistsAccessible(ctx context.Context, userID string) (Accessibility, error) {
	var page *spotifyapi.SimplePlaylistPage
	err := c.call("probe user playlists", func() error {
		var err error
		page, err = c.api.GetPlaylistsForUser(ctx, userID, spotifyapi.Limit(1))
		return err
	})
	if err != nil {
		var serr spotifyapi.Error
		if errors.As(err, &serr) {
			switch serr.Status {
			case 404:
				return Accessibility{Err: "user not found"}, nil
			case 403:
				return Accessibility{Err: "user playlists are private or not accessible"}, nil
			default:
				return Accessibility{Err: "error accessing user playlists: " + serr.Error()}, nil
			}
		}
		return Accessibility{}, err
	}

	return Accessibility{Accessible: true, PlaylistCount: int(page.Total)}, nil
}

// validationFromError maps a Spotify API status error onto the validation
// taxonomy. The bool is false for non-API errors, which the caller should
// propagate instead.
func validationFromError(err error, entity string) (Validation, bool) {
	if errors.Is(err, ErrRateLimited) {
		return Validation{}, false
	}

	var serr spotifyapi.Error
	if !errors.As(err, &serr) {
		return Validation{}, false
	}

	switch serr.Status {
	case 404:
		return Validation{Err: entity + " not found or not accessible"}, true
	case 403:
		return Validation{Valid: true, Err: entity + " exists but is private/not accessible"}, true
	case 401:
		return Validation{Err: "authentication error - check Spotify credentials"}, true
	default:
		return Validation{Err: "Spotify API error: " + serr.Error()}, true
	}
}
