package catalog

import (
	"database/sql"
	"time"

	"github.com/desertthunder/shelfsync/internal/models"
)

// scanner is satisfied by both *sql.Row and *sql.Rows, letting the Get/List
// scan helpers below serve single- and multi-row queries alike.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(s scanner) (models.Track, error) {
	var (
		t          models.Track
		durationMS sql.NullInt64
		addedAt    sql.NullTime
		isLocal    int
	)

	err := s.Scan(&t.URI, &t.Title, &t.Artist, &t.Album, &durationMS, &addedAt, &isLocal, &t.SurrogateKey, &t.Popularity)
	if err != nil {
		return models.Track{}, err
	}

	if durationMS.Valid {
		ms := int(durationMS.Int64)
		t.DurationMS = &ms
	}
	if addedAt.Valid {
		at := addedAt.Time
		t.AddedAt = &at
	}
	t.IsLocal = isLocal != 0

	return t, nil
}

func scanFileMapping(s scanner) (models.FileMapping, error) {
	var (
		fm       models.FileMapping
		active   int
		idInt    int64
		modified time.Time
		created  time.Time
	)

	err := s.Scan(&idInt, &fm.FilePath, &fm.TrackURI, &fm.FileHash, &fm.FileSize, &modified, &created, &active)
	if err != nil {
		return models.FileMapping{}, err
	}

	fm.ID = idString(idInt)
	fm.ModifiedAt = modified
	fm.CreatedAt = created
	fm.Active = active != 0

	return fm, nil
}

func scanPlaylist(s scanner) (models.Playlist, error) {
	var p models.Playlist
	err := s.Scan(&p.ID, &p.Name, &p.MasterSyncToken, &p.AssociationsToken)
	return p, err
}
