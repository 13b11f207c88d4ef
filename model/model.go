package model

// Mode selects how the model's response is turned into document changes.
type Mode string

const (
	// ModeReplace treats the whole response as the new document.
	ModeReplace Mode = "replace"
	// ModePatch treats the response as a structured list of edits.
	ModePatch Mode = "patch"
)

// Edit is a single literal substitution: every occurrence of Old becomes New.
type Edit struct {
	Old string `json:"old" jsonschema:"required,description=Exact text currently in the document"`
	New string `json:"new" jsonschema:"required,description=Text that replaces every occurrence of old"`
}

// EditList is the structured response expected in patch mode.
type EditList struct {
	Edits []Edit `json:"edits" jsonschema:"required,description=Edits applied in listed order"`
}

// SkippedEdit records an edit whose old text was not present when its turn came.
type SkippedEdit struct {
	Index  int
	Edit   Edit
	Reason string
	// NearLine is the 1-based line where a whitespace-insensitive match begins, or 0 if none.
	NearLine int
}

// ApplyResult describes what a batch of edits did to a document.
type ApplyResult struct {
	Applied []int
	Skipped []SkippedEdit
}

// Changed reports whether at least one edit was applied.
func (r ApplyResult) Changed() bool {
	return len(r.Applied) > 0
}

// RunState tracks a directive through generation.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunPrompting RunState = "prompting"
	RunApplied   RunState = "applied"
	RunFailed    RunState = "failed"
)

// ReviewState is the outcome of the keep/revert checkpoint.
type ReviewState string

const (
	ReviewPending  ReviewState = "pending"
	ReviewAccepted ReviewState = "accepted"
	ReviewReverted ReviewState = "reverted"
)

// CommitState is the outcome of the commit checkpoint.
type CommitState string

const (
	CommitSkipped   CommitState = "skipped"
	CommitCommitted CommitState = "committed"
	CommitFailed    CommitState = "failed"
)

// DiffStats summarizes a diff. Changed reflects the raw diff text; the line
// counts are for display and may miss lines the parser does not recognize.
type DiffStats struct {
	Changed bool
	Added   int
	Removed int
}

// Empty reports whether the diff changed nothing.
func (d DiffStats) Empty() bool {
	return !d.Changed && d.Added == 0 && d.Removed == 0
}

// Summary holds the results of a run for display.
type Summary struct {
	Mode    Mode
	Path    string
	Run     RunState
	Apply   ApplyResult
	Diff    DiffStats
	Review  ReviewState
	Commit  CommitState
	Message string
}
