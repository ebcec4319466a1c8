package binder

// Candidate is one ranked match surfaced for user selection.
type Candidate struct {
	URI   string
	Title string
	Score float64
}

// AutoMatch is a file whose top match cleared the confidence threshold.
type AutoMatch struct {
	FilePath string
	URI      string
	Score    float64
}

// Selection is a file whose top match fell below threshold (or had no
// candidates), carrying the ranked candidates for a caller to choose from.
type Selection struct {
	FilePath   string
	Candidates []Candidate
}

// Plan is the result of Analyze: everything needed to drive Execute.
type Plan struct {
	Root           string
	Threshold      float64
	AutoMatches    []AutoMatch
	NeedsSelection []Selection
	FilesScanned   int
	FilesSkipped   int
}

// Binding is one completed file-to-track association.
type Binding struct {
	FilePath string
	URI      string
}

// Conflict is a binding that could not be applied: the file was already
// bound to a different track (ExistingURI set), or the file does not exist
// or the requested URI names no catalog track (ExistingURI empty).
type Conflict struct {
	FilePath    string
	ExistingURI string
	RequestedURI string
}

// ExecuteResult reports what Execute actually did.
type ExecuteResult struct {
	Bound     []Binding
	NoOps     []Binding
	Conflicts []Conflict
	Resolved  []string
}

// DuplicateGroup is one track URI with more than one active file binding.
type DuplicateGroup struct {
	URI       string
	FilePaths []string
}
