package models

// Playlist is a tracked playlist row. SnapshotID is the opaque token Spotify
// rotates whenever the playlist contents change; it is the only change signal
// the sync engine looks at.
type Playlist struct {
	ID            string
	Name          string
	Description   string
	OwnerID       string
	SnapshotID    string
	Public        bool
	Collaborative bool
	TracksTotal   int
	Href          string
	URI           string
}

// ChangeType classifies a queued playlist change.
type ChangeType string

const (
	ChangeNew      ChangeType = "NEW"
	ChangeModified ChangeType = "MODIFIED"
)

// QueueEntry is one pending reconciliation item. A playlist may have several
// entries; processing removes them all by playlist id, so completion is
// idempotent per playlist rather than per row.
type QueueEntry struct {
	ID            int64
	PlaylistID    string
	PlaylistName  string
	ChangeType    ChangeType
	OldSnapshotID string // empty for NEW
	NewSnapshotID string
	DetectedAt    int64 // unix seconds
}

// Song metadata is written on first sight and, unless the refresh knob is
// enabled, never touched again.
type Song struct {
	ID          string
	Name        string
	DurationMS  int
	Explicit    bool
	Popularity  int
	PreviewURL  string
	Href        string
	URI         string
	ExternalURL string
	AlbumID     string
	AlbumName   string
}

// TrackArtist is the artist reference carried on a playlist track. Full
// artist metadata comes from a separate (batched) lookup.
type TrackArtist struct {
	ID   string
	Name string
}

// Track is a song as returned by the remote playlist endpoint, including its
// artist references.
type Track struct {
	Song
	Artists []TrackArtist
}

type Artist struct {
	ID             string
	Name           string
	Genres         string // comma-joined
	Popularity     int
	FollowersTotal int
	Href           string
	URI            string
	ExternalURL    string
}

// ActionLogEntry is an append-only audit record. The action log, not the
// console log, is the source of truth for what a run did.
type ActionLogEntry struct {
	ID           int64
	ActionType   string
	EntityType   string
	EntityID     string
	EntityName   string
	Reason       string
	Details      string
	Success      bool
	ErrorMessage string
	Timestamp    int64 // unix seconds
}

// ManagedPlaylist maps a registered generator to the remote playlist it owns,
// so repeated generation runs update in place instead of duplicating.
type ManagedPlaylist struct {
	Name        string
	PlaylistID  string
	Title       string
	Description string
	Public      bool
}
