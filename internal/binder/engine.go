package binder

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/desertthunder/shelfsync/internal/catalog"
	"github.com/desertthunder/shelfsync/internal/matcher"
	"github.com/desertthunder/shelfsync/internal/models"
)

// DefaultThreshold is the confidence bar a top candidate must clear to be
// auto-bound rather than surfaced for user selection.
const DefaultThreshold = 0.75

// analyzeFloor is the minimum score find_matches will return at all, so
// the needs-user-selection path still has near-misses to show.
const analyzeFloor = 0.4

// maxCandidates bounds how many ranked candidates accompany a
// needs-user-selection record.
const maxCandidates = 10

// numWorkers bounds concurrent metadata extraction during a directory
// walk, sized for local disk I/O rather than a remote rate limit.
const numWorkers = 8

// Engine binds on-disk audio files to catalog tracks.
type Engine struct {
	pool *catalog.Pool
}

// New builds an Engine bound to a catalog connection pool.
func New(pool *catalog.Pool) *Engine {
	return &Engine{pool: pool}
}

type scanJob struct {
	file audioFile
}

type scanResult struct {
	file     audioFile
	metadata extractedMetadata
}

// Analyze walks root, skips files already actively bound, and classifies
// every remaining audio file as an auto-match or a needs-user-selection
// candidate list.
func (e *Engine) Analyze(ctx context.Context, root string, threshold float64) (*Plan, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	tracks, err := uow.Tracks.List()
	if err != nil {
		uow.Rollback()
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	mappings, err := uow.AllActiveMappings()
	if err != nil {
		uow.Rollback()
		return nil, fmt.Errorf("load active file mappings: %w", err)
	}
	uow.Rollback()

	boundPaths := make(map[string]bool, len(mappings))
	for _, fm := range mappings {
		boundPaths[fm.FilePath] = true
	}

	files, err := walkAudioFiles(root)
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	plan := &Plan{Root: root, Threshold: threshold, FilesScanned: len(files)}

	var unbound []audioFile
	for _, f := range files {
		if boundPaths[f.Path] {
			plan.FilesSkipped++
			continue
		}
		unbound = append(unbound, f)
	}

	results := e.extractAll(ctx, unbound)

	m := matcher.New(tracks, mappings)
	for _, r := range results {
		matches := m.FindMatches(r.file.Path, analyzeFloor, maxCandidates, "", r.metadata.DurationMS)
		if len(matches) > 0 && matches[0].Score >= threshold {
			plan.AutoMatches = append(plan.AutoMatches, AutoMatch{
				FilePath: r.file.Path,
				URI:      matches[0].Track.URI,
				Score:    matches[0].Score,
			})
			continue
		}

		candidates := make([]Candidate, 0, len(matches))
		for _, match := range matches {
			candidates = append(candidates, Candidate{URI: match.Track.URI, Title: match.Track.Title, Score: match.Score})
		}
		plan.NeedsSelection = append(plan.NeedsSelection, Selection{FilePath: r.file.Path, Candidates: candidates})
	}

	return plan, nil
}

// extractAll reads tag metadata for every file concurrently, bounded by
// numWorkers, preserving no particular output order.
func (e *Engine) extractAll(ctx context.Context, files []audioFile) []scanResult {
	jobs := make(chan scanJob, len(files))
	out := make(chan scanResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				out <- scanResult{file: job.file, metadata: extractMetadata(job.file.Path)}
			}
		}()
	}

	for _, f := range files {
		jobs <- scanJob{file: f}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]scanResult, 0, len(files))
	for r := range out {
		results = append(results, r)
	}
	return results
}

// Execute validates and applies every intended binding from auto-matches
// plus caller-supplied user selections, then (if resolutions are given)
// resolves any track left with more than one active binding.
func (e *Engine) Execute(ctx context.Context, plan *Plan, selections map[string]string, resolutions map[string]string) (*ExecuteResult, error) {
	intended := make([]Binding, 0, len(plan.AutoMatches)+len(selections))
	for _, am := range plan.AutoMatches {
		intended = append(intended, Binding{FilePath: am.FilePath, URI: am.URI})
	}
	for path, uri := range selections {
		intended = append(intended, Binding{FilePath: path, URI: uri})
	}

	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	result := &ExecuteResult{}

	for _, b := range intended {
		info, err := os.Stat(b.FilePath)
		if err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{FilePath: b.FilePath, RequestedURI: b.URI})
			continue
		}
		if _, err := uow.Tracks.Get(b.URI); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{FilePath: b.FilePath, RequestedURI: b.URI})
			continue
		}

		existing, err := uow.FileMappings.GetByPath(b.FilePath)
		if err == nil && existing.Active {
			if existing.TrackURI == b.URI {
				result.NoOps = append(result.NoOps, b)
				continue
			}
			result.Conflicts = append(result.Conflicts, Conflict{FilePath: b.FilePath, ExistingURI: existing.TrackURI, RequestedURI: b.URI})
			continue
		}

		hash, err := hashFile(b.FilePath)
		if err != nil {
			return nil, fmt.Errorf("hash file %s: %w", b.FilePath, err)
		}
		if _, err := uow.FileMappings.Create(models.FileMapping{
			FilePath:   b.FilePath,
			TrackURI:   b.URI,
			FileHash:   hash,
			FileSize:   info.Size(),
			ModifiedAt: info.ModTime(),
			Active:     true,
		}); err != nil {
			return nil, fmt.Errorf("create file mapping for %s: %w", b.FilePath, err)
		}
		result.Bound = append(result.Bound, b)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit bindings: %w", err)
	}

	if len(resolutions) > 0 {
		resolved, err := e.ResolveExistingDuplicateMappings(ctx, resolutions)
		if err != nil {
			return nil, err
		}
		result.Resolved = resolved
	}

	return result, nil
}

// GetExistingDuplicateMappings returns every track URI currently bound by
// more than one active file mapping, with the competing file paths.
func (e *Engine) GetExistingDuplicateMappings(ctx context.Context) ([]DuplicateGroup, error) {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	mappings, err := uow.AllActiveMappings()
	if err != nil {
		return nil, fmt.Errorf("load active file mappings: %w", err)
	}

	byURI := make(map[string][]string)
	for _, fm := range mappings {
		byURI[fm.TrackURI] = append(byURI[fm.TrackURI], fm.FilePath)
	}

	var groups []DuplicateGroup
	for uri, paths := range byURI {
		if len(paths) > 1 {
			groups = append(groups, DuplicateGroup{URI: uri, FilePaths: paths})
		}
	}
	return groups, nil
}

// ResolveExistingDuplicateMappings keeps the chosen file path for each
// track URI in resolutions and soft-deletes every other active mapping
// for that URI.
func (e *Engine) ResolveExistingDuplicateMappings(ctx context.Context, resolutions map[string]string) ([]string, error) {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	var resolved []string
	for uri, keepPath := range resolutions {
		active, err := uow.FileMappings.ActiveForURI(uri)
		if err != nil {
			return nil, fmt.Errorf("load active mappings for %s: %w", uri, err)
		}
		for _, fm := range active {
			if fm.FilePath == keepPath {
				continue
			}
			if err := uow.FileMappings.Deactivate(fm.ID); err != nil {
				return nil, fmt.Errorf("deactivate mapping %s: %w", fm.ID, err)
			}
		}
		resolved = append(resolved, uri)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit resolutions: %w", err)
	}
	return resolved, nil
}

// CleanupStaleMappings soft-deletes every active mapping whose file no
// longer exists on disk.
func (e *Engine) CleanupStaleMappings(ctx context.Context) ([]string, error) {
	uow, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire catalog connection: %w", err)
	}
	defer uow.Rollback()

	mappings, err := uow.AllActiveMappings()
	if err != nil {
		return nil, fmt.Errorf("load active file mappings: %w", err)
	}

	var stale []string
	for _, fm := range mappings {
		if _, err := os.Stat(fm.FilePath); os.IsNotExist(err) {
			if err := uow.FileMappings.DeactivateByPath(fm.FilePath); err != nil {
				return nil, fmt.Errorf("deactivate stale mapping %s: %w", fm.FilePath, err)
			}
			stale = append(stale, fm.FilePath)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit stale cleanup: %w", err)
	}
	return stale, nil
}
