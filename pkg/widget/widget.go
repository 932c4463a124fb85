package widget

import (
	"context"
	"errors"
	"log/slog"
)

// Effect is a one-shot command for the client that cannot be expressed as
// view state.
type Effect uint8

const (
	// EffectOpenPicker opens the native file chooser.
	EffectOpenPicker Effect = iota + 1

	// EffectSubmitForm lets the native form submission proceed.
	EffectSubmitForm
)

// String returns the string representation of the effect.
func (e Effect) String() string {
	switch e {
	case EffectOpenPicker:
		return "OpenPicker"
	case EffectSubmitForm:
		return "SubmitForm"
	default:
		return "Unknown"
	}
}

// DecodeOutcome classifies how a preview decode ended.
type DecodeOutcome string

const (
	DecodeOK     DecodeOutcome = "ok"
	DecodeFailed DecodeOutcome = "failed"
	DecodeStale  DecodeOutcome = "stale"
)

// Observer receives widget outcomes for metrics.
type Observer interface {
	Rejected(reason Reason)
	Decoded(outcome DecodeOutcome)
}

// Option configures an UploadWidget.
type Option func(*UploadWidget)

// WithRules sets the validation rules.
func WithRules(r Rules) Option {
	return func(w *UploadWidget) {
		w.rules = r
	}
}

// WithDecoder sets the preview decoder.
// Default: DataURLDecoder capped at the rules' size limit.
func WithDecoder(d Decoder) Option {
	return func(w *UploadWidget) {
		w.decoder = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *UploadWidget) {
		w.logger = l
	}
}

// WithLabels sets the submit control labels.
func WithLabels(l Labels) Option {
	return func(w *UploadWidget) {
		w.labels = l
	}
}

// WithObserver sets the outcome observer.
func WithObserver(o Observer) Option {
	return func(w *UploadWidget) {
		w.observer = o
	}
}

// WithContext sets the parent context of preview decodes. Cancelling it
// aborts any in-flight decode.
func WithContext(ctx context.Context) Option {
	return func(w *UploadWidget) {
		w.ctx = ctx
	}
}

// UploadWidget is the upload selection state machine for one form.
type UploadWidget struct {
	rules    Rules
	decoder  Decoder
	dispatch Dispatcher
	logger   *slog.Logger
	labels   Labels
	observer Observer
	ctx      context.Context

	state      SelectionState
	inputFile  FileHandle
	dragOver   bool
	submitting bool

	// gen identifies the current selection; decode completions carrying
	// an older generation are dropped.
	gen    uint64
	cancel context.CancelFunc

	effects []Effect
}

// New creates an empty widget. d must run callbacks on the goroutine
// that calls the widget's methods.
func New(d Dispatcher, opts ...Option) *UploadWidget {
	w := &UploadWidget{
		rules:    DefaultRules(),
		dispatch: d,
		logger:   slog.Default(),
		labels:   DefaultLabels(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.decoder == nil {
		w.decoder = DataURLDecoder{MaxBytes: w.rules.maxSize()}
	}
	return w
}

// State returns a copy of the selection state.
func (w *UploadWidget) State() SelectionState {
	return w.state
}

// Phase returns the current lifecycle phase.
func (w *UploadWidget) Phase() Phase {
	return w.state.Phase()
}

// Rules returns the validation rules in effect.
func (w *UploadWidget) Rules() Rules {
	return w.rules
}

// ActivatePicker asks the client to open the native file chooser.
func (w *UploadWidget) ActivatePicker() {
	w.effects = append(w.effects, EffectOpenPicker)
}

// DragOver sets the drag-over visual flag.
func (w *UploadWidget) DragOver() {
	w.dragOver = true
}

// DragLeave clears the drag-over visual flag.
func (w *UploadWidget) DragLeave() {
	w.dragOver = false
}

// Drop handles files dropped on the drop zone. Only the first file is
// considered; the rest are ignored.
func (w *UploadWidget) Drop(files []FileHandle) {
	w.dragOver = false
	if len(files) == 0 {
		return
	}
	w.HandleFile(files[0])
}

// InputChange handles files chosen through the native picker. An empty
// list (the picker was dismissed) is a no-op.
func (w *UploadWidget) InputChange(files []FileHandle) {
	if len(files) == 0 {
		return
	}
	w.HandleFile(files[0])
}

// HandleFile validates f and, when valid, selects it and starts the
// preview decode. An invalid file resets the selection and shows the
// validation message.
func (w *UploadWidget) HandleFile(f FileHandle) {
	w.hideError()

	if err := w.rules.Check(f); err != nil {
		w.reject(err)
		return
	}

	w.abortDecode()
	w.inputFile = f
	w.submitting = false
	w.state = SelectionState{File: f}

	gen := w.gen
	ctx, cancel := context.WithCancel(w.ctx)
	w.cancel = cancel

	go func() {
		src, err := w.decoder.Decode(ctx, f)
		w.dispatch.Dispatch(func() {
			w.finishDecode(gen, f, src, err)
		})
	}()
}

// finishDecode applies a decode result if it still belongs to the
// current selection.
func (w *UploadWidget) finishDecode(gen uint64, f FileHandle, src string, err error) {
	if gen != w.gen {
		w.observe(DecodeStale)
		return
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	if err != nil {
		w.logger.Warn("preview decode failed", "file", f.Name(), "error", err)
		w.observe(DecodeFailed)
		w.reject(ErrUnreadable)
		return
	}

	w.state.PreviewDataURL = src
	w.observe(DecodeOK)
}

// Reset clears the selection, the preview, the control value and any
// error, and cancels an in-flight decode. Calling it repeatedly yields the
// same Empty state.
func (w *UploadWidget) Reset() {
	w.abortDecode()
	w.clearSelection()
	w.hideError()
}

// Submit reports whether the form may be submitted. With nothing selected
// it shows the no-file message and leaves the state unchanged; otherwise
// it releases the form and switches the submit control to loading.
func (w *UploadWidget) Submit() bool {
	if w.state.File == nil {
		w.showError(MsgNoFileSelected)
		w.observeReject(ReasonNoFileSelected)
		return false
	}
	if w.submitting {
		return false
	}
	w.submitting = true
	w.effects = append(w.effects, EffectSubmitForm)
	return true
}

// TakeEffects returns and clears the queued effects.
func (w *UploadWidget) TakeEffects() []Effect {
	fx := w.effects
	w.effects = nil
	return fx
}

// View derives the visible contract from the current state.
func (w *UploadWidget) View() View {
	preview := w.state.Phase() == PhaseSelected

	v := View{
		DragOver:       w.dragOver,
		ShowPrompt:     !preview,
		ShowPreview:    preview,
		ErrorVisible:   w.state.ErrorMessage != "",
		ErrorText:      w.state.ErrorMessage,
		SubmitDisabled: !preview || w.submitting,
		Submitting:     w.submitting,
		SubmitLabel:    w.labels.Submit,
		InputValue:     controlValue(w.inputFile),
	}
	if preview {
		v.PreviewSrc = w.state.PreviewDataURL
		v.FileName = w.state.File.Name()
	}
	if w.submitting {
		v.SubmitLabel = w.labels.Loading
	}
	return v
}

// Close cancels any in-flight decode. The widget stays usable.
func (w *UploadWidget) Close() {
	w.abortDecode()
}

func (w *UploadWidget) reject(err error) {
	w.abortDecode()
	w.clearSelection()

	var ve *ValidationError
	if !errors.As(err, &ve) {
		ve = ErrUnreadable
	}
	w.showError(ve.Message)
	w.observeReject(ve.Reason)
}

// abortDecode invalidates the current generation and cancels its decode.
func (w *UploadWidget) abortDecode() {
	w.gen++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *UploadWidget) clearSelection() {
	w.inputFile = nil
	w.submitting = false
	w.state.File = nil
	w.state.PreviewDataURL = ""
}

func (w *UploadWidget) showError(msg string) {
	w.state.ErrorMessage = msg
}

func (w *UploadWidget) hideError() {
	w.state.ErrorMessage = ""
}

func (w *UploadWidget) observe(o DecodeOutcome) {
	if w.observer != nil {
		w.observer.Decoded(o)
	}
}

func (w *UploadWidget) observeReject(r Reason) {
	if w.observer != nil {
		w.observer.Rejected(r)
	}
}

func controlValue(f FileHandle) string {
	if f == nil {
		return ""
	}
	if id, ok := f.(Identified); ok {
		return id.ID()
	}
	return f.Name()
}
