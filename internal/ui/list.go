package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/shelfsync/internal/binder"
)

var (
	_ list.Item = fileItem{}
	_ list.Item = candidateItem{}
)

// fileItem wraps [binder.Selection] to implement [list.Item].
type fileItem struct {
	selection binder.Selection
	resolved  bool
	skipped   bool
}

func (i fileItem) FilterValue() string { return filepath.Base(i.selection.FilePath) }
func (i fileItem) Title() string       { return filepath.Base(i.selection.FilePath) }
func (i fileItem) Description() string {
	switch {
	case i.skipped:
		return "skipped"
	case i.resolved:
		return "resolved"
	default:
		return fmt.Sprintf("%d candidates", len(i.selection.Candidates))
	}
}

// candidateItem wraps [binder.Candidate] to implement [list.Item].
type candidateItem struct {
	candidate binder.Candidate
}

func (i candidateItem) FilterValue() string { return i.candidate.Title }
func (i candidateItem) Title() string       { return i.candidate.Title }
func (i candidateItem) Description() string {
	return fmt.Sprintf("score %.2f • %s", i.candidate.Score, i.candidate.URI)
}
