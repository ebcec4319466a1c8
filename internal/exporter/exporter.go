package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/models"
)

// extension is the file suffix for every playlist file this package writes.
const extension = ".m3u"

// Engine materializes catalog playlists onto disk as M3U files and keeps
// their folder layout in sync with a structure file.
type Engine struct {
	pool *catalog.Pool
}

// New builds an Engine bound to a catalog connection pool.
func New(pool *catalog.Pool) *Engine {
	return &Engine{pool: pool}
}

// Result reports the outcome of regenerating one playlist file.
type Result struct {
	PlaylistID   string
	PlaylistName string
	Path         string
	TracksFound  int
	TracksWritten int
	SizeBytes    int64
}

// BatchResult separates successful regenerations from per-playlist failures.
type BatchResult struct {
	Succeeded []Result
	Failed    map[string]error
}

// RegeneratePlaylist rewrites the single playlist's M3U file under
// outputDir, resolving its target folder from the structure file (or
// fallback scan), per the single-playlist regeneration steps. extended
// selects the `#EXTM3U`/`#EXTINF` form over the bare one-path-per-line form.
func (e *Engine) RegeneratePlaylist(ctx context.Context, playlistID, outputDir string, extended bool) (Result, error) {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	playlist, err := uow.Playlists.Get(playlistID)
	if err != nil {
		return Result{}, fmt.Errorf("get playlist %s: %w", playlistID, err)
	}
	uris, err := uow.Associations.URIsForPlaylist(playlistID)
	if err != nil {
		return Result{}, fmt.Errorf("get track uris for playlist %s: %w", playlistID, err)
	}
	mappings, err := uow.AllActiveMappings()
	if err != nil {
		return Result{}, fmt.Errorf("load active file mappings: %w", err)
	}
	tracks, err := uow.TracksByURIs(uris)
	if err != nil {
		return Result{}, fmt.Errorf("load tracks for playlist %s: %w", playlistID, err)
	}

	byURI := pathsByURI(mappings)
	return e.writePlaylistFile(outputDir, playlist, uris, tracks, byURI, extended)
}

// writePlaylistFile resolves a target directory, builds the entry list,
// and writes the M3U file (extended or plain), returning its Result.
func (e *Engine) writePlaylistFile(outputDir string, playlist models.Playlist, uris []string, tracks map[string]models.Track, pathsByURI map[string]string, extended bool) (Result, error) {
	structure, err := loadStructure(outputDir)
	if err != nil {
		return Result{}, err
	}

	safeName := sanitizeFilename(playlist.Name)
	dir := locate(outputDir, structure, safeName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	entries := make([]entry, 0, len(uris))
	for _, uri := range uris {
		path, ok := pathsByURI[uri]
		if !ok {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		track, ok := tracks[uri]
		if !ok {
			continue
		}
		entries = append(entries, entry{track: track, path: path})
	}

	target := filepath.Join(dir, safeName+extension)
	writer := writeM3U
	if !extended {
		writer = writePlain
	}
	size, err := writer(target, entries)
	if err != nil {
		return Result{}, err
	}

	return Result{
		PlaylistID:    playlist.ID,
		PlaylistName:  playlist.Name,
		Path:          target,
		TracksFound:   len(uris),
		TracksWritten: len(entries),
		SizeBytes:     size,
	}, nil
}

// RegenerateBatch rewrites M3U files for every playlist ID given, loading
// playlists, track mappings, and file paths in a constant number of
// queries regardless of how many playlists are requested. extended selects
// the `#EXTM3U`/`#EXTINF` form over the bare one-path-per-line form.
func (e *Engine) RegenerateBatch(ctx context.Context, playlistIDs []string, outputDir string, extended bool) (BatchResult, error) {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	playlists, err := uow.PlaylistsByIDs(playlistIDs)
	if err != nil {
		return BatchResult{}, fmt.Errorf("load playlists by id: %w", err)
	}
	urisByPlaylist, err := uow.PlaylistTrackURIsBatch(playlistIDs)
	if err != nil {
		return BatchResult{}, fmt.Errorf("load track uris batch: %w", err)
	}

	allURIs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, uris := range urisByPlaylist {
		for _, uri := range uris {
			if _, ok := seen[uri]; !ok {
				seen[uri] = struct{}{}
				allURIs = append(allURIs, uri)
			}
		}
	}
	tracks, err := uow.TracksByURIs(allURIs)
	if err != nil {
		return BatchResult{}, fmt.Errorf("load tracks batch: %w", err)
	}
	mappings, err := uow.AllActiveMappings()
	if err != nil {
		return BatchResult{}, fmt.Errorf("load active file mappings: %w", err)
	}
	byURI := pathsByURI(mappings)

	result := BatchResult{Failed: make(map[string]error)}
	for _, id := range playlistIDs {
		playlist, ok := playlists[id]
		if !ok {
			result.Failed[id] = fmt.Errorf("playlist %s not found", id)
			continue
		}
		r, err := e.writePlaylistFile(outputDir, playlist, urisByPlaylist[id], tracks, byURI, extended)
		if err != nil {
			result.Failed[id] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, r)
	}
	return result, nil
}

// DesiredStructure is the caller-supplied target layout for Reorganize:
// a map from playlist name to its desired subfolder (empty string for root).
type DesiredStructure map[string]string

// Reorganize moves playlist files to match desired, optionally snapshotting
// the current tree first, then persists the new structure file.
func (e *Engine) Reorganize(ctx context.Context, outputDir string, desired DesiredStructure, backup bool, now time.Time) error {
	if backup {
		if err := snapshotDir(outputDir, now); err != nil {
			return fmt.Errorf("snapshot before reorganize: %w", err)
		}
	}

	folders := make(map[string]struct{})
	for _, folder := range desired {
		if folder != "" {
			folders[folder] = struct{}{}
		}
	}
	sortedFolders := make([]string, 0, len(folders))
	for f := range folders {
		sortedFolders = append(sortedFolders, f)
	}
	sort.Strings(sortedFolders)
	for _, f := range sortedFolders {
		if err := os.MkdirAll(filepath.Join(outputDir, f), 0755); err != nil {
			return fmt.Errorf("create folder %s: %w", f, err)
		}
	}

	existing, err := scanPlaylistFiles(outputDir)
	if err != nil {
		return fmt.Errorf("scan existing playlist files: %w", err)
	}

	names := make([]string, 0, len(desired))
	for name := range desired {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		safe := sanitizeFilename(name)
		folder := desired[name]
		targetPath := filepath.Join(outputDir, folder, safe+extension)

		oldPath, existedBefore := existing[strings.ToLower(safe)]
		if existedBefore && oldPath != targetPath {
			data, err := os.ReadFile(oldPath)
			if err != nil {
				return fmt.Errorf("read existing playlist file %s: %w", oldPath, err)
			}
			if err := os.WriteFile(targetPath, data, 0644); err != nil {
				return fmt.Errorf("write relocated playlist file %s: %w", targetPath, err)
			}
			if err := os.Remove(oldPath); err != nil {
				return fmt.Errorf("remove old playlist file %s: %w", oldPath, err)
			}
		} else if !existedBefore {
			if _, err := writeM3U(targetPath, nil); err != nil {
				return fmt.Errorf("create new playlist file %s: %w", targetPath, err)
			}
		}
	}

	kept := make(map[string]struct{}, len(names))
	for _, name := range names {
		kept[strings.ToLower(sanitizeFilename(name))] = struct{}{}
	}
	for stem, path := range existing {
		if _, ok := kept[stem]; !ok {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove orphaned playlist file %s: %w", path, err)
			}
		}
	}

	structure := Structure{Folders: make(map[string]FolderEntry)}
	for _, name := range names {
		folder := desired[name]
		if folder == "" {
			structure.RootPlaylists = append(structure.RootPlaylists, name)
			continue
		}
		fe := structure.Folders[folder]
		fe.Playlists = append(fe.Playlists, name)
		structure.Folders[folder] = fe
	}

	return saveStructure(outputDir, structure, now)
}

// CleanupOrphans deletes (or, in dryRun mode, merely reports) any playlist
// file under outputDir whose stem names no catalog playlist, then prunes
// the structure file of those same entries.
func (e *Engine) CleanupOrphans(ctx context.Context, outputDir string, dryRun bool, now time.Time) ([]string, error) {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	playlists, err := uow.Playlists.List()
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	current := make(map[string]struct{}, len(playlists))
	for _, p := range playlists {
		current[strings.ToLower(sanitizeFilename(p.Name))] = struct{}{}
	}

	existing, err := scanPlaylistFiles(outputDir)
	if err != nil {
		return nil, fmt.Errorf("scan existing playlist files: %w", err)
	}

	var orphans []string
	for stem, path := range existing {
		if _, ok := current[stem]; !ok {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)

	if dryRun {
		return orphans, nil
	}

	for _, path := range orphans {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove orphan %s: %w", path, err)
		}
	}

	structure, err := loadStructure(outputDir)
	if err != nil {
		return nil, err
	}
	structure.RootPlaylists = pruneNames(structure.RootPlaylists, current)
	for folder, fe := range structure.Folders {
		fe.Playlists = pruneNames(fe.Playlists, current)
		structure.Folders[folder] = fe
	}
	if err := saveStructure(outputDir, structure, now); err != nil {
		return nil, err
	}

	return orphans, nil
}

// pruneNames drops any name from names whose sanitized, lowered form is
// not a key in keep.
func pruneNames(names []string, keep map[string]struct{}) []string {
	out := names[:0:0]
	for _, n := range names {
		if _, ok := keep[strings.ToLower(sanitizeFilename(n))]; ok {
			out = append(out, n)
		}
	}
	return out
}

// scanPlaylistFiles walks dir for *.m3u files, keyed by lowercased stem.
func scanPlaylistFiles(dir string) (map[string]string, error) {
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(d.Name())) != extension {
			return nil
		}
		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		out[strings.ToLower(stem)] = path
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return out, nil
}

// snapshotDir copies outputDir to a timestamped sibling directory.
func snapshotDir(outputDir string, now time.Time) error {
	parent := filepath.Dir(outputDir)
	base := filepath.Base(outputDir)
	backupDir := filepath.Join(parent, fmt.Sprintf("%s-backup-%s", base, now.UTC().Format("20060102T150405Z")))

	return filepath.WalkDir(outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(backupDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	})
}

// pathsByURI indexes active file mappings by track URI.
func pathsByURI(mappings []models.FileMapping) map[string]string {
	out := make(map[string]string, len(mappings))
	for _, m := range mappings {
		out[m.TrackURI] = m.FilePath
	}
	return out
}
