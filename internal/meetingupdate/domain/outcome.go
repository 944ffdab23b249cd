package domain

import "encoding/json"

// State labels the conversation state machine's position for one update
// request. Pending only exists between turns; the other three are the
// possible outcomes of handling a turn.
type State string

const (
	StatePending          State = "pending"
	StateAwaitingMoreInfo State = "missing_fields"
	StateNotFound         State = "event_not_found"
	StateCommitted        State = "completed"
)

// Outcome is the tagged result of handling one turn. Exactly one of
// Committed, AwaitingMoreInfo, or NotFound implements it.
type Outcome interface {
	State() State
}

// Committed is the terminal success outcome.
type Committed struct {
	// Summary is the human-readable success payload handed to reply
	// generation.
	Summary string
}

func (Committed) State() State { return StateCommitted }

// NotFound is the terminal outcome when the referenced meeting could not
// be resolved within the search boundary.
type NotFound struct{}

func (NotFound) State() State { return StateNotFound }

// AwaitingMoreInfo carries everything the next turn needs: the report to
// show the user, the merged draft so far, the resolution boundary, and the
// raw extraction bodies from the turn that triggered the prompt. The
// conversation layer round-trips this value back unchanged.
type AwaitingMoreInfo struct {
	Missing     MissingFieldsReport
	Draft       UpdateDraft
	Boundary    SearchBoundary
	RawParams   json.RawMessage
	RawDateTime json.RawMessage
}

func (AwaitingMoreInfo) State() State { return StateAwaitingMoreInfo }
