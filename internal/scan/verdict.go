package scan

// State is the position of one instance in the scan pipeline.
type State int

const (
	StatePending State = iota
	StateWalking
	StateClassifying
	StateAggregated
	StateFlagged
	StateSuspended
	StateIndeterminate
	StateClean
	StateNoQualifyingFiles
	StateErrored
)

var stateNames = map[State]string{
	StatePending:           "pending",
	StateWalking:           "walking",
	StateClassifying:       "classifying",
	StateAggregated:        "aggregated",
	StateFlagged:           "flagged",
	StateSuspended:         "suspended",
	StateIndeterminate:     "indeterminate",
	StateClean:             "clean",
	StateNoQualifyingFiles: "no-qualifying-files",
	StateErrored:           "errored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether s ends an instance scan.
func (s State) Terminal() bool {
	return s >= StateFlagged
}

// noScore marks a verdict without any successful classification.
const noScore = -1

// Verdict is the aggregate outcome of scanning one instance.
type Verdict struct {
	State              State
	MaxScore           int // noScore when no file was scored
	FilesFound         int // qualifying by extension
	FilesSkipped       int // shorter than the minimum length
	FilesUnreadable    int // read failures tolerated by SkipUnreadableFiles
	FilesClassified    int // classification attempted
	FilesIndeterminate int // classification attempted without a score
}

// FilesScored is the number of files that received a score.
func (v Verdict) FilesScored() int {
	return v.FilesClassified - v.FilesIndeterminate
}

// decide turns the per-file tallies into the aggregate state.
// Scores above flagThreshold flag the instance; scores at or above suspendThreshold suspend it.
func decide(v Verdict, flagThreshold, suspendThreshold int) State {
	switch {
	case v.FilesClassified == 0:
		return StateNoQualifyingFiles
	case v.FilesScored() == 0:
		return StateIndeterminate
	case v.MaxScore >= suspendThreshold:
		return StateSuspended
	case v.MaxScore > flagThreshold:
		return StateFlagged
	default:
		return StateClean
	}
}
