package playlists

// Registry returns the static set of registered generators. New generators
// are added here rather than discovered at runtime.
func Registry(database songSource, spotifySearch trackSearcher) []Generator {
	return []Generator{
		NewHiddenGems(database),
		NewSearchMix(spotifySearch),
	}
}
