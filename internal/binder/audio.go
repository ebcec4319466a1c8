package binder

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// audioExtensions are the file suffixes the directory walk considers.
var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".wav": true,
	".m4a": true, ".aac": true, ".ogg": true, ".wma": true,
}

// audioFile is one file discovered under the walked root.
type audioFile struct {
	Path       string
	ModifiedAt time.Time
	SizeBytes  int64
}

// walkAudioFiles enumerates every audio file under root by extension, in
// deterministic (sorted) path order.
func walkAudioFiles(root string) ([]audioFile, error) {
	var files []audioFile
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, audioFile{Path: path, ModifiedAt: info.ModTime(), SizeBytes: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// extractedMetadata is what can be read off a file's tags: duration
// (when computable), and an embedded track identifier if present.
type extractedMetadata struct {
	DurationMS *int
	TrackID    string
}

// extractMetadata reads tag metadata from path, falling back to a bare
// zero-value result (not an error) when the file has no readable tags.
func extractMetadata(path string) extractedMetadata {
	f, err := os.Open(path)
	if err != nil {
		return extractedMetadata{}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return extractedMetadata{}
	}

	result := extractedMetadata{}
	if raw := m.Raw(); raw != nil {
		if id, ok := raw["TXXX:TRACKID"].(string); ok && id != "" {
			result.TrackID = id
		}
	}

	if m.FileType() == tag.MP3 {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			if ms, ok := mp3DurationMS(f); ok {
				result.DurationMS = &ms
			}
		}
	}

	return result
}

// mp3DurationMS sums frame durations to compute an MP3's total playback
// length; dhowden/tag exposes no duration accessor for any format.
func mp3DurationMS(r io.Reader) (int, bool) {
	decoder := mp3.NewDecoder(r)
	var total time.Duration
	var frame mp3.Frame
	skipped := 0
	frames := 0
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
		frames++
	}
	if frames == 0 {
		return 0, false
	}
	return int(total.Milliseconds()), true
}

// hashFile computes the lowercase hex SHA-256 digest of path's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
