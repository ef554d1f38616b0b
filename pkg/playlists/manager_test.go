package playlists

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

type fakeManagerDB struct {
	managed map[string]models.ManagedPlaylist
	saves   []models.ManagedPlaylist
	deletes []string
}

func newFakeManagerDB() *fakeManagerDB {
	return &fakeManagerDB{managed: map[string]models.ManagedPlaylist{}}
}

func (f *fakeManagerDB) SaveManagedPlaylist(_ context.Context, m models.ManagedPlaylist) error {
	f.managed[m.Name] = m
	f.saves = append(f.saves, m)
	return nil
}

func (f *fakeManagerDB) GetManagedPlaylist(_ context.Context, name string) (*models.ManagedPlaylist, error) {
	m, ok := f.managed[name]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeManagerDB) AllManagedPlaylists(context.Context) ([]models.ManagedPlaylist, error) {
	out := make([]models.ManagedPlaylist, 0, len(f.managed))
	for _, m := range f.managed {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeManagerDB) DeleteManagedPlaylist(_ context.Context, name string) error {
	delete(f.managed, name)
	f.deletes = append(f.deletes, name)
	return nil
}

type fakeWriter struct {
	existing map[string]bool
	nextID   string

	created  []string // titles
	updated  []string // playlist ids
	replaced map[string][]string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		existing: map[string]bool{},
		nextID:   "created-1",
		replaced: map[string][]string{},
	}
}

func (f *fakeWriter) CreatePlaylistWithTracks(_ context.Context, title, _ string, _ bool, trackIDs []string) (string, error) {
	f.created = append(f.created, title)
	f.existing[f.nextID] = true
	f.replaced[f.nextID] = trackIDs
	return f.nextID, nil
}

func (f *fakeWriter) UpdatePlaylistDetails(_ context.Context, playlistID, _, _ string, _ bool) error {
	f.updated = append(f.updated, playlistID)
	return nil
}

func (f *fakeWriter) ReplacePlaylistTracks(_ context.Context, playlistID string, trackIDs []string) error {
	f.replaced[playlistID] = trackIDs
	return nil
}

func (f *fakeWriter) PlaylistExists(_ context.Context, playlistID string) (bool, error) {
	return f.existing[playlistID], nil
}

type fakeGenerator struct {
	name   string
	title  string
	tracks []string
	err    error
}

func (g *fakeGenerator) Name() string        { return g.name }
func (g *fakeGenerator) Title() string       { return g.title }
func (g *fakeGenerator) Description() string { return "test playlist" }
func (g *fakeGenerator) Public() bool        { return false }

func (g *fakeGenerator) Tracks(context.Context) ([]string, error) {
	return g.tracks, g.err
}

func TestManagerCreatesNewPlaylist(t *testing.T) {
	ctx := context.Background()
	db := newFakeManagerDB()
	writer := newFakeWriter()
	gen := &fakeGenerator{name: "mix", title: "Mix #auto", tracks: []string{"t1", "t2"}}

	m := NewManager(db, writer, []Generator{gen}, zap.NewNop())
	applied, err := m.Apply(ctx)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied generator, got %d", applied)
	}

	if len(writer.created) != 1 || writer.created[0] != "Mix #auto" {
		t.Fatalf("expected one create with the generator title, got %v", writer.created)
	}
	saved, ok := db.managed["mix"]
	if !ok {
		t.Fatalf("mapping was not saved")
	}
	if saved.PlaylistID != "created-1" {
		t.Fatalf("mapping points at %q, want created-1", saved.PlaylistID)
	}
	if got := writer.replaced["created-1"]; len(got) != 2 {
		t.Fatalf("expected 2 tracks in the new playlist, got %v", got)
	}
}

func TestManagerRefreshesExistingPlaylist(t *testing.T) {
	ctx := context.Background()
	db := newFakeManagerDB()
	db.managed["mix"] = models.ManagedPlaylist{
		Name: "mix", PlaylistID: "existing-1", Title: "Mix #auto", Description: "test playlist",
	}
	writer := newFakeWriter()
	writer.existing["existing-1"] = true
	gen := &fakeGenerator{name: "mix", title: "Mix #auto", tracks: []string{"t3"}}

	m := NewManager(db, writer, []Generator{gen}, zap.NewNop())
	if _, err := m.Apply(ctx); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if len(writer.created) != 0 {
		t.Fatalf("existing playlist must be refreshed, not recreated: %v", writer.created)
	}
	if len(writer.updated) != 0 {
		t.Fatalf("unchanged details must not be rewritten: %v", writer.updated)
	}
	if got := writer.replaced["existing-1"]; len(got) != 1 || got[0] != "t3" {
		t.Fatalf("expected track replacement on existing-1, got %v", got)
	}
}

func TestManagerRecreatesWhenRemoteGone(t *testing.T) {
	ctx := context.Background()
	db := newFakeManagerDB()
	db.managed["mix"] = models.ManagedPlaylist{Name: "mix", PlaylistID: "gone-1", Title: "Mix #auto"}
	writer := newFakeWriter() // gone-1 not in existing
	gen := &fakeGenerator{name: "mix", title: "Mix #auto", tracks: []string{"t1"}}

	m := NewManager(db, writer, []Generator{gen}, zap.NewNop())
	if _, err := m.Apply(ctx); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if len(writer.created) != 1 {
		t.Fatalf("expected the playlist to be recreated, creates=%v", writer.created)
	}
	if db.managed["mix"].PlaylistID != "created-1" {
		t.Fatalf("mapping must follow the recreated playlist, got %q", db.managed["mix"].PlaylistID)
	}
}

func TestManagerSkipsEmptyAndFailedGenerators(t *testing.T) {
	ctx := context.Background()
	db := newFakeManagerDB()
	writer := newFakeWriter()
	empty := &fakeGenerator{name: "empty", title: "Empty #auto"}
	broken := &fakeGenerator{name: "broken", title: "Broken #auto", err: errors.New("source down")}
	good := &fakeGenerator{name: "good", title: "Good #auto", tracks: []string{"t1"}}

	m := NewManager(db, writer, []Generator{empty, broken, good}, zap.NewNop())
	applied, err := m.Apply(ctx)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// The empty generator counts as applied (nothing to do), the broken one
	// does not.
	if applied != 2 {
		t.Fatalf("expected 2 applied generators, got %d", applied)
	}
	if len(writer.created) != 1 {
		t.Fatalf("only the good generator should create, got %v", writer.created)
	}
}

func TestManagerDropsUnregisteredMappings(t *testing.T) {
	ctx := context.Background()
	db := newFakeManagerDB()
	db.managed["retired"] = models.ManagedPlaylist{Name: "retired", PlaylistID: "old-1"}
	writer := newFakeWriter()
	gen := &fakeGenerator{name: "mix", title: "Mix #auto", tracks: []string{"t1"}}

	m := NewManager(db, writer, []Generator{gen}, zap.NewNop())
	if _, err := m.Apply(ctx); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if _, ok := db.managed["retired"]; ok {
		t.Fatalf("mapping for an unregistered generator must be dropped")
	}
	if _, ok := db.managed["mix"]; !ok {
		t.Fatalf("active mapping must survive cleanup")
	}
}

func TestGeneratorTitlesCarryAutoMarker(t *testing.T) {
	for _, g := range Registry(fakeSongSource{}, fakeSearcher{}) {
		if !strings.Contains(g.Title(), "#auto") {
			t.Fatalf("generator %s title %q lacks the #auto marker", g.Name(), g.Title())
		}
	}
}

type fakeSongSource struct{}

func (fakeSongSource) FilteredSongs(_ context.Context, minPopularity, maxPopularity, limit int) ([]models.Song, error) {
	return []models.Song{{ID: "s1", Popularity: minPopularity}}, nil
}

type fakeSearcher struct{}

func (fakeSearcher) SearchTracks(_ context.Context, query string, limit int) ([]models.Track, error) {
	return []models.Track{
		{Song: models.Song{ID: "t1"}},
		{Song: models.Song{ID: "t1"}}, // duplicate across genres
		{Song: models.Song{ID: "t2"}},
	}, nil
}

func TestHiddenGemsTracks(t *testing.T) {
	g := NewHiddenGems(fakeSongSource{})
	ids, err := g.Tracks(context.Background())
	if err != nil {
		t.Fatalf("tracks failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "s1" {
		t.Fatalf("unexpected track ids: %v", ids)
	}
}

func TestSearchMixDeduplicates(t *testing.T) {
	g := NewSearchMix(fakeSearcher{})
	ids, err := g.Tracks(context.Background())
	if err != nil {
		t.Fatalf("tracks failed: %v", err)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate track id %q in result", id)
		}
		seen[id] = true
	}
	if !seen["t1"] || !seen["t2"] {
		t.Fatalf("expected t1 and t2 in result, got %v", ids)
	}
}
