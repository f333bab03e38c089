package domain

import "errors"

const (
	MinTargetSizeKB = 10
	MaxTargetSizeKB = 1000

	// MaxUploadBytes matches the upload limit enforced by the service.
	MaxUploadBytes = 10 * 1024 * 1024
)

var (
	ErrMissingFile        = errors.New("missing file")
	ErrOutOfRange         = errors.New("target size out of range")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrFileTooLarge       = errors.New("file exceeds 10MB upload limit")
	ErrBusy               = errors.New("a submission is already in progress")
	ErrInvalidTransition  = errors.New("invalid lifecycle transition")
	ErrSendingReplyFailed = errors.New("failed to send reply")
)

const (
	CaptionUploading  = "Uploading..."
	CaptionProcessing = "Processing..."

	MessageMissingFile        = "Please select an image file."
	MessageOutOfRange         = "Target size must be between 10 and 1000 KB."
	MessageNetworkUnreachable = "Cannot connect to server. Please make sure the backend is running."
)

// ValidationMessage returns the text shown for a validation error, or err's own text otherwise.
func ValidationMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return MessageMissingFile
	case errors.Is(err, ErrOutOfRange):
		return MessageOutOfRange
	default:
		return err.Error()
	}
}
