package workflow

import (
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Rules are the parts in which one workflow differs from another.
type Rules[P any] struct {
	Name string
	// Validate turns the raw user input into a submission.
	Validate func(file *domain.File, param P) (domain.SubmissionRequest, error)
	// DownloadName derives the suggested filename of the artifact.
	DownloadName func(request domain.SubmissionRequest) string
	// SourcePreview enables rendering of the selected file.
	SourcePreview bool
	// HidePreviewOnFailure hides the whole preview region whenever an error is shown.
	HidePreviewOnFailure bool
	// SuccessMessage is logged after a successful submission.
	SuccessMessage string
	// FailureMessage is shown for failures that carry no diagnostic.
	FailureMessage string
}

// Workflow drives submissions for one user facing feature and keeps the surface in sync with them.
type Workflow[P any] struct {
	rules     Rules[P]
	transport port.Transport
	surface   port.Surface
	handles   port.HandleStore
	previewer port.Previewer
	lifecycle *Lifecycle
	log       zerolog.Logger

	mu      sync.Mutex
	preview domain.PreviewState
}

func New[P any](rules Rules[P], transport port.Transport, surface port.Surface, handles port.HandleStore,
	previewer port.Previewer) *Workflow[P] {
	w := &Workflow[P]{
		rules:     rules,
		transport: transport,
		surface:   surface,
		handles:   handles,
		previewer: previewer,
		log:       log.With().Str("workflow", rules.Name).Logger(),
	}
	w.lifecycle = NewLifecycle(w.present)

	return w
}

func (w *Workflow[P]) Name() string {
	return w.rules.Name
}

func (w *Workflow[P]) Phase() domain.Phase {
	return w.lifecycle.Phase()
}

func (w *Workflow[P]) Trace() []domain.Transition {
	return w.lifecycle.Trace()
}

func (w *Workflow[P]) Preview() domain.PreviewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.preview
}

// Select renders the preview of a newly selected file and clears a displayed error.
func (w *Workflow[P]) Select(file *domain.File) error {
	if file == nil || !w.rules.SourcePreview {
		return nil
	}

	data := file.Data
	if w.previewer != nil {
		data = w.previewer.Displayable(file.Data)
	}

	handle, err := w.handles.Create(data, file.Name)
	if err != nil {
		return fmt.Errorf("failed to create source preview: %w", err)
	}

	source := domain.Descriptor{Handle: handle, SizeLabel: domain.FormatFileSize(file.Size)}

	w.mu.Lock()
	if w.preview.Source != nil {
		w.handles.Revoke(w.preview.Source.Handle)
	}
	w.preview.Source = &source
	w.mu.Unlock()

	w.surface.ShowSource(source)
	w.surface.HideError()

	w.log.Debug().Str("file", file.Name).Str("size", source.SizeLabel).Msg("source selected")

	return nil
}

// Submit validates the input and, if valid, runs one full request cycle. It returns the validation
// error, domain.ErrBusy, or the *domain.Failure the submission settled with.
func (w *Workflow[P]) Submit(ctx context.Context, file *domain.File, param P) error {
	if w.lifecycle.Phase().Busy() {
		return domain.ErrBusy
	}

	request, err := w.rules.Validate(file, param)
	if err != nil {
		w.log.Debug().Err(err).Msg("validation failed")
		w.showError(domain.ValidationMessage(err))
		return err
	}

	if _, err := w.lifecycle.Fire(domain.Submit); err != nil {
		return err
	}

	w.surface.HideError()
	w.clearResult()

	l := w.log.With().
		Str("file", request.File.Name).
		Int64("bytes", request.File.Size).
		Logger()

	l.Info().Msg("submitting image")

	var once sync.Once
	sent := func() {
		once.Do(func() {
			w.fire(domain.RequestSent)
		})
	}

	res, err := w.transport.Send(ctx, request, sent)
	if err == nil {
		sent()
	}

	outcome := Interpret(res, err)

	if success, ok := outcome.(domain.Success); ok {
		filename := w.rules.DownloadName(request)
		handle, herr := w.handles.Create(success.Bytes, filename)
		if herr == nil {
			result := domain.Descriptor{Handle: handle, SizeLabel: domain.FormatFileSize(int64(len(success.Bytes)))}

			w.mu.Lock()
			w.preview.Result = &result
			w.mu.Unlock()

			w.surface.ShowResult(result, filename)
			w.fire(domain.ResponseOK)

			l.Info().Str("mimeType", success.MimeType).Str("result", result.SizeLabel).Msg(w.rules.SuccessMessage)
			return nil
		}

		outcome = &domain.Failure{Kind: domain.Unknown, Diagnostic: herr.Error()}
	}

	failure, ok := outcome.(*domain.Failure)
	if !ok {
		failure = &domain.Failure{Kind: domain.Unknown}
	}

	l.Error().Err(failure).Int("status", failure.StatusCode).Msg("submission failed")

	w.showError(failure.DisplayMessage(w.rules.FailureMessage))

	if err != nil {
		w.fire(domain.TransportError)
	} else {
		w.fire(domain.ResponseError)
	}

	return failure
}

// Reset returns a settled workflow to Idle.
func (w *Workflow[P]) Reset() error {
	_, err := w.lifecycle.Fire(domain.Reset)
	return err
}

// Close revokes every handle the workflow still holds.
func (w *Workflow[P]) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.preview.Source != nil {
		w.handles.Revoke(w.preview.Source.Handle)
		w.preview.Source = nil
	}
	if w.preview.Result != nil {
		w.handles.Revoke(w.preview.Result.Handle)
		w.preview.Result = nil
	}
}

func (w *Workflow[P]) clearResult() {
	w.mu.Lock()
	if w.preview.Result != nil {
		w.handles.Revoke(w.preview.Result.Handle)
		w.preview.Result = nil
	}
	w.mu.Unlock()

	w.surface.HideResult()
}

func (w *Workflow[P]) showError(message string) {
	w.surface.ShowError(message)
	if w.rules.HidePreviewOnFailure {
		w.surface.HidePreview()
	}
}

func (w *Workflow[P]) fire(event domain.Event) {
	if _, err := w.lifecycle.Fire(event); err != nil {
		w.log.Error().Err(err).Msg("lifecycle rejected event")
	}
}

// present keeps the control and the busy indicator in line with the phase.
func (w *Workflow[P]) present(t domain.Transition) {
	w.log.Debug().Stringer("from", t.From).Stringer("event", t.Event).Stringer("to", t.To).Msg("phase changed")

	switch t.To {
	case domain.Uploading:
		w.surface.SetControlEnabled(false)
		w.surface.ShowBusy(domain.CaptionUploading)
	case domain.Processing:
		w.surface.ShowBusy(domain.CaptionProcessing)
	default:
		w.surface.HideBusy()
		w.surface.SetControlEnabled(true)
	}
}
