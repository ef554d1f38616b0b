package db

import "database/sql"

// initSchema creates every table on startup. There is no migration mechanism;
// the schema only ever grows via "if not exists".
func initSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT,
			description TEXT,
			owner_id TEXT,
			snapshot_id TEXT,
			public INTEGER,
			collaborative INTEGER,
			tracks_total INTEGER,
			href TEXT,
			uri TEXT
		);

		CREATE TABLE IF NOT EXISTS queue (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id TEXT NOT NULL,
			playlist_name TEXT,
			change_type TEXT NOT NULL,
			old_snapshot_id TEXT,
			new_snapshot_id TEXT,
			detected_at INTEGER NOT NULL,
			FOREIGN KEY (playlist_id) REFERENCES playlists (id)
		);

		CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			name TEXT,
			duration_ms INTEGER,
			explicit INTEGER,
			popularity INTEGER,
			preview_url TEXT,
			href TEXT,
			uri TEXT,
			external_urls TEXT,
			album_id TEXT,
			album_name TEXT
		);

		CREATE TABLE IF NOT EXISTS artists (
			id TEXT PRIMARY KEY,
			name TEXT,
			genres TEXT,
			popularity INTEGER,
			followers_total INTEGER,
			href TEXT,
			uri TEXT,
			external_urls TEXT
		);

		CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id TEXT NOT NULL,
			song_id TEXT NOT NULL,
			PRIMARY KEY (playlist_id, song_id),
			FOREIGN KEY (playlist_id) REFERENCES playlists (id),
			FOREIGN KEY (song_id) REFERENCES songs (id)
		);

		CREATE TABLE IF NOT EXISTS song_artists (
			song_id TEXT NOT NULL,
			artist_id TEXT NOT NULL,
			PRIMARY KEY (song_id, artist_id),
			FOREIGN KEY (song_id) REFERENCES songs (id),
			FOREIGN KEY (artist_id) REFERENCES artists (id)
		);

		CREATE TABLE IF NOT EXISTS action_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action_type TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			entity_name TEXT,
			reason TEXT NOT NULL,
			details TEXT,
			success INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			timestamp INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS managed_playlists (
			name TEXT PRIMARY KEY,
			playlist_id TEXT NOT NULL,
			title TEXT,
			description TEXT,
			public INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_queue_playlist_id ON queue(playlist_id);
		CREATE INDEX IF NOT EXISTS idx_playlist_songs_song_id ON playlist_songs(song_id);
		CREATE INDEX IF NOT EXISTS idx_song_artists_artist_id ON song_artists(artist_id);
		CREATE INDEX IF NOT EXISTS idx_action_log_timestamp ON action_log(timestamp);
	`)
	return err
}
