// Package ui implements an interactive terminal interface for resolving
// the binding engine's ambiguous files using bubbletea's Elm architecture.
//
// The TUI presents two panes:
//  1. [FileListView] : the files needing a selection, filed by the binder
//  2. [CandidateListView] : the ranked candidate tracks for the highlighted file
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. Enter accepts the highlighted candidate for the current file
// and returns to the file list; s skips the current file outright. Once
// every file has been resolved or skipped a summary view is shown, the
// next key press quits, and [Model.Resolutions] returns the accumulated
// selections.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, s, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
