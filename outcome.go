package fetchartifact

// OutcomeKind classifies how a search ended.
type OutcomeKind int

const (
	// OutcomeFound means the named artifact was located.
	OutcomeFound OutcomeKind = iota

	// OutcomeNoWorkflow means no workflow in the catalog has the requested name.
	OutcomeNoWorkflow

	// OutcomeNoSuccessfulRuns means the branch has no eligible successful run
	// (or none at the requested commit).
	OutcomeNoSuccessfulRuns

	// OutcomeExhaustedSearch means the page bound was hit before a run
	// matching the commit turned up.
	OutcomeExhaustedSearch

	// OutcomeNoMatchingArtifact means the accepted runs had no artifact
	// with the requested name.
	OutcomeNoMatchingArtifact
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeNoWorkflow:
		return "no workflow"
	case OutcomeNoSuccessfulRuns:
		return "no successful runs"
	case OutcomeExhaustedSearch:
		return "exhausted search"
	case OutcomeNoMatchingArtifact:
		return "no matching artifact"
	default:
		return "unknown"
	}
}

// Outcome is the result of a search.
type Outcome struct {
	Kind OutcomeKind

	// Result is set only when Kind is OutcomeFound.
	Result *SearchResult

	// WorkflowID is the resolved workflow, zero if none matched.
	WorkflowID int64

	// PagesScanned counts run pages that had eligible runs but none
	// matching the requested commit.
	PagesScanned int
}

// Found reports whether the search located the artifact.
func (o Outcome) Found() bool {
	return o.Kind == OutcomeFound && o.Result != nil
}
