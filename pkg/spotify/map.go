package spotify

import (
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

func simplePlaylistModel(p spotifyapi.SimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:            p.ID.String(),
		Name:          p.Name,
		OwnerID:       p.Owner.ID,
		SnapshotID:    p.SnapshotID,
		Public:        p.IsPublic,
		Collaborative: p.Collaborative,
		TracksTotal:   int(p.Tracks.Total),
		Href:          p.Endpoint,
		URI:           string(p.URI),
	}
}

func fullPlaylistModel(p *spotifyapi.FullPlaylist) models.Playlist {
	out := simplePlaylistModel(p.SimplePlaylist)
	out.Description = p.Description
	out.TracksTotal = int(p.Tracks.Total)
	return out
}

func trackModel(t *spotifyapi.FullTrack) models.Track {
	out := models.Track{
		Song: models.Song{
			ID:          t.ID.String(),
			Name:        t.Name,
			DurationMS:  int(t.Duration),
			Explicit:    t.Explicit,
			Popularity:  int(t.Popularity),
			PreviewURL:  t.PreviewURL,
			Href:        t.Endpoint,
			URI:         string(t.URI),
			ExternalURL: t.ExternalURLs["spotify"],
			AlbumID:     t.Album.ID.String(),
			AlbumName:   t.Album.Name,
		},
	}
	for _, a := range t.Artists {
		out.Artists = append(out.Artists, models.TrackArtist{ID: a.ID.String(), Name: a.Name})
	}
	return out
}

func artistModel(a *spotifyapi.FullArtist) models.Artist {
	return models.Artist{
		ID:             a.ID.String(),
		Name:           a.Name,
		Genres:         strings.Join(a.Genres, ", "),
		Popularity:     int(a.Popularity),
		FollowersTotal: int(a.Followers.Count),
		Href:           a.Endpoint,
		URI:            string(a.URI),
		ExternalURL:    a.ExternalURLs["spotify"],
	}
}
