// Package remote wraps the external streaming catalog's SDK behind a thin
// Client contract: list playlists, list playlist items, create/mutate
// playlist membership. Callers receive domain records, never SDK response
// shapes.
package remote
