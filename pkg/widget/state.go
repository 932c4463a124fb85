package widget

// Phase is the derived state of a SelectionState.
type Phase uint8

const (
	PhaseEmpty    Phase = iota // nothing selected
	PhaseDecoding              // file accepted, preview pending
	PhaseSelected              // file accepted, preview ready
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "Empty"
	case PhaseDecoding:
		return "Decoding"
	case PhaseSelected:
		return "Selected"
	default:
		return "Unknown"
	}
}

// SelectionState is the only entity the widget owns.
//
// PreviewDataURL is set only while File is set and its decode completed.
// ErrorMessage is set only while File is nil.
type SelectionState struct {
	File           FileHandle
	PreviewDataURL string
	ErrorMessage   string
}

// Phase derives the lifecycle phase from the fields.
func (s SelectionState) Phase() Phase {
	switch {
	case s.File == nil:
		return PhaseEmpty
	case s.PreviewDataURL == "":
		return PhaseDecoding
	default:
		return PhaseSelected
	}
}
