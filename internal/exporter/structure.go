package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/shelfsync/internal/shared"
)

// structureFileName is the JSON file under the playlist output directory
// that is authoritative for playlist location across regenerations.
const structureFileName = ".playlist_structure.json"

// structureVersion is bumped whenever the on-disk schema changes shape.
const structureVersion = 1

// FolderEntry lists the playlists that belong to one subfolder of the
// output directory.
type FolderEntry struct {
	Playlists []string `json:"playlists"`
}

// Structure is the full desired (or observed) folder layout: playlists
// directly under the output root, plus named subfolders each with their
// own playlist list.
type Structure struct {
	RootPlaylists []string               `json:"root_playlists"`
	Folders       map[string]FolderEntry `json:"folders"`

	StructureVersion int    `json:"structure_version"`
	LastUpdated      string `json:"last_updated"`
}

// loadStructure reads the structure file from dir, returning an empty
// Structure (not an error) if it doesn't exist yet.
func loadStructure(dir string) (Structure, error) {
	path := filepath.Join(dir, structureFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Structure{Folders: make(map[string]FolderEntry), StructureVersion: structureVersion}, nil
	}

	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return Structure{}, fmt.Errorf("read structure file: %w", err)
	}
	if err := shared.ValidateJSON(data); err != nil {
		return Structure{}, fmt.Errorf("structure file: %w", err)
	}

	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return Structure{}, fmt.Errorf("parse structure file: %w", err)
	}
	if s.Folders == nil {
		s.Folders = make(map[string]FolderEntry)
	}
	return s, nil
}

// saveStructure persists s to dir's structure file, stamping LastUpdated.
func saveStructure(dir string, s Structure, now time.Time) error {
	s.StructureVersion = structureVersion
	s.LastUpdated = now.UTC().Format(time.RFC3339)

	data, err := shared.MarshalJSON(s, true)
	if err != nil {
		return fmt.Errorf("marshal structure file: %w", err)
	}
	path := filepath.Join(dir, structureFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write structure file: %w", err)
	}
	return nil
}

// locate resolves the target directory for playlistName: the structure
// file's recorded location if present, else a case-insensitive scan of
// existing playlist files for a matching stem, else the output root.
func locate(outputDir string, s Structure, playlistName string) string {
	for _, name := range s.RootPlaylists {
		if name == playlistName {
			return outputDir
		}
	}
	for folder, entry := range s.Folders {
		for _, name := range entry.Playlists {
			if name == playlistName {
				return filepath.Join(outputDir, folder)
			}
		}
	}

	if dir, ok := findExistingFile(outputDir, playlistName); ok {
		return dir
	}

	return outputDir
}

// findExistingFile walks outputDir looking for a playlist file whose stem
// matches name case-insensitively, returning its containing directory.
func findExistingFile(outputDir, name string) (string, bool) {
	target := strings.ToLower(name)
	var found string
	var ok bool

	_ = filepath.WalkDir(outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || ok {
			return nil
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(d.Name())) != extension {
			return nil
		}
		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if strings.ToLower(stem) == target {
			found = filepath.Dir(path)
			ok = true
		}
		return nil
	})

	return found, ok
}

// forbiddenFilenameChars are stripped from a playlist name to build a
// filesystem-safe filename; spaces are preserved.
const forbiddenFilenameChars = `<>:"/\|?*`

// sanitizeFilename removes characters that are unsafe in a filename on
// common filesystems, preserving spaces.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(forbiddenFilenameChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
