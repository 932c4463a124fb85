package widget

// Reason classifies a rejected selection.
type Reason uint8

const (
	ReasonInvalidType Reason = iota + 1
	ReasonTooLarge
	ReasonNoFileSelected
	ReasonUnreadable
)

// String returns the metric-friendly name of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonInvalidType:
		return "invalid_type"
	case ReasonTooLarge:
		return "too_large"
	case ReasonNoFileSelected:
		return "no_file_selected"
	case ReasonUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgInvalidType    = "Please upload a valid image file (JPG or PNG)."
	MsgNoFileSelected = "Please select an image to upload."
	MsgUnreadable     = "Could not read the selected file."
)

// ValidationError is a local validation failure. Message is the literal
// text shown in the error region.
type ValidationError struct {
	Reason  Reason
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "widget: " + e.Reason.String()
}

// Is reports whether target is a ValidationError with the same reason,
// so errors.Is(err, ErrTooLarge) works regardless of the message.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

// Sentinels for errors.Is.
var (
	ErrInvalidType    = &ValidationError{Reason: ReasonInvalidType, Message: MsgInvalidType}
	ErrTooLarge       = &ValidationError{Reason: ReasonTooLarge}
	ErrNoFileSelected = &ValidationError{Reason: ReasonNoFileSelected, Message: MsgNoFileSelected}
	ErrUnreadable     = &ValidationError{Reason: ReasonUnreadable, Message: MsgUnreadable}
)
