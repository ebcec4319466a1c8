package exporter

import (
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/shelfsync/internal/models"
)

// entry is one resolvable line of a playlist: a track whose URI has an
// active file mapping that still exists on disk.
type entry struct {
	track models.Track
	path  string
}

// writeM3U writes an extended-format playlist file (#EXTM3U header,
// #EXTINF duration/artist/title line, then an absolute path, per entry)
// to path, overwriting any existing file.
func writeM3U(path string, entries []entry) (int64, error) {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, e := range entries {
		seconds := 0
		if e.track.DurationMS != nil {
			seconds = *e.track.DurationMS / 1000
		}
		fmt.Fprintf(&b, "#EXTINF:%d,%s - %s\n", seconds, strings.Join(e.track.Artists(), ", "), e.track.Title)
		b.WriteString(e.path)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return 0, fmt.Errorf("write playlist file %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat written playlist file %s: %w", path, err)
	}
	return info.Size(), nil
}

// writePlain writes a non-extended playlist file: just one absolute path
// per line, no header or metadata.
func writePlain(path string, entries []entry) (int64, error) {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.path)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return 0, fmt.Errorf("write playlist file %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat written playlist file %s: %w", path, err)
	}
	return info.Size(), nil
}
