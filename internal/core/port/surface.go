package port

import "imgtool/internal/core/domain"

// Surface is the user facing side of one workflow instance. Calls may come from the transport's goroutine
// as well as the one driving the workflow, so implementations must be safe for concurrent use and must
// not block on user input.
type Surface interface {
	// SetControlEnabled toggles the control that triggers a submission.
	SetControlEnabled(enabled bool)
	// ShowBusy shows the busy indicator with the given caption, replacing any previous caption.
	ShowBusy(caption string)
	HideBusy()
	ShowError(message string)
	HideError()
	// ShowSource renders the preview of the selected file.
	ShowSource(source domain.Descriptor)
	// ShowResult renders the artifact preview and offers it for download under filename.
	ShowResult(result domain.Descriptor, filename string)
	// HideResult hides the artifact preview and download reference.
	HideResult()
	// HidePreview hides the whole preview region, source included.
	HidePreview()
}

// HandleStore owns the content behind transient handles.
type HandleStore interface {
	Create(data []byte, name string) (domain.Handle, error)
	Revoke(handle domain.Handle)
}

type Previewer interface {
	// Displayable returns content suitable for rendering the given image. It falls back to data itself
	// when the image cannot be decoded.
	Displayable(data []byte) []byte
}
