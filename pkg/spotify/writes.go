package spotify

import (
	"context"
	"errors"
	"fmt"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// Write operations are only used by the generation run, which authenticates
// through NewUserClient. The sync engine never mutates the playlists it
// tracks.

func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var user *spotifyapi.PrivateUser
	if err := c.call("current user", func() error {
		var err error
		user, err = c.api.CurrentUser(ctx)
		return err
	}); err != nil {
		return "", err
	}
	return user.ID, nil
}

// CreatePlaylistWithTracks creates a playlist for the current user and fills
// it, returning the new playlist id.
func (c *Client) CreatePlaylistWithTracks(ctx context.Context, title, description string, public bool, trackIDs []string) (string, error) {
	userID, err := c.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}

	var fp *spotifyapi.FullPlaylist
	if err := c.call("create playlist", func() error {
		var err error
		fp, err = c.api.CreatePlaylistForUser(ctx, userID, title, description, public, false)
		return err
	}); err != nil {
		return "", err
	}

	playlistID := fp.ID.String()
	c.log.Info("created playlist", zap.String("title", title), zap.String("playlist_id", playlistID))

	if err := c.addTracks(ctx, playlistID, trackIDs); err != nil {
		return playlistID, err
	}
	return playlistID, nil
}

func (c *Client) UpdatePlaylistDetails(ctx context.Context, playlistID, title, description string, public bool) error {
	id := spotifyapi.ID(playlistID)

	if err := c.call("change playlist details", func() error {
		return c.api.ChangePlaylistNameAndAccess(ctx, id, title, public)
	}); err != nil {
		return err
	}

	if description != "" {
		if err := c.call("change playlist description", func() error {
			return c.api.ChangePlaylistDescription(ctx, id, description)
		}); err != nil {
			return err
		}
	}

	c.log.Info("updated playlist details", zap.String("playlist_id", playlistID))
	return nil
}

// ReplacePlaylistTracks swaps the playlist contents for the given tracks. An
// empty list clears the playlist.
func (c *Client) ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	id := spotifyapi.ID(playlistID)

	head := trackIDs
	var rest []string
	if len(head) > trackWriteChunk {
		head, rest = trackIDs[:trackWriteChunk], trackIDs[trackWriteChunk:]
	}

	if err := c.call("replace playlist tracks", func() error {
		return c.api.ReplacePlaylistTracks(ctx, id, toSpotifyIDs(head)...)
	}); err != nil {
		return err
	}

	if err := c.addTracks(ctx, playlistID, rest); err != nil {
		return err
	}

	c.log.Info("replaced playlist tracks",
		zap.String("playlist_id", playlistID), zap.Int("tracks", len(trackIDs)))
	return nil
}

// PlaylistExists reports whether the playlist still exists and belongs to the
// current user. A 403 can hide a private playlist the user still owns, so
// that case falls back to scanning the user's own library pages.
func (c *Client) PlaylistExists(ctx context.Context, playlistID string) (bool, error) {
	var fp *spotifyapi.FullPlaylist
	err := c.call("check playlist", func() error {
		var err error
		fp, err = c.api.GetPlaylist(ctx, spotifyapi.ID(playlistID),
			spotifyapi.Fields("id,name,owner.id"))
		return err
	})
	if err != nil {
		var serr spotifyapi.Error
		if errors.As(err, &serr) {
			switch serr.Status {
			case 404:
				return false, nil
			case 403:
				return c.inCurrentUserLibrary(ctx, playlistID)
			case 401:
				return false, fmt.Errorf("check playlist: %w", err)
			}
		}
		return false, err
	}

	userID, err := c.CurrentUserID(ctx)
	if err != nil {
		return false, err
	}
	if fp.Owner.ID != userID {
		c.log.Info("playlist exists but is not owned by current user",
			zap.String("playlist_id", playlistID))
		return false, nil
	}

	return c.inCurrentUserLibrary(ctx, playlistID)
}

func (c *Client) inCurrentUserLibrary(ctx context.Context, playlistID string) (bool, error) {
	var page *spotifyapi.SimplePlaylistPage
	if err := c.call("current user playlists", func() error {
		var err error
		page, err = c.api.CurrentUsersPlaylists(ctx, spotifyapi.Limit(50))
		return err
	}); err != nil {
		return false, err
	}

	for {
		for _, p := range page.Playlists {
			if p.ID.String() == playlistID {
				return true, nil
			}
		}

		err := c.call("current user playlists page", func() error {
			return c.api.NextPage(ctx, page)
		})
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}

func (c *Client) addTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	for _, chunk := range chunkIDs(trackIDs, trackWriteChunk) {
		chunk := chunk
		if err := c.call("add playlist tracks", func() error {
			_, err := c.api.AddTracksToPlaylist(ctx, spotifyapi.ID(playlistID), toSpotifyIDs(chunk)...)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}
