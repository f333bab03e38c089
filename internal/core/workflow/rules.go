package workflow

import (
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
)

type (
	ResizeWorkflow  = Workflow[string]
	ConvertWorkflow = Workflow[domain.Format]
)

// ResizeRules recompress an image to a target size given in kilobytes.
var ResizeRules = Rules[string]{
	Name:                 "resize",
	Validate:             ValidateResize,
	DownloadName:         ProcessedName,
	SourcePreview:        true,
	HidePreviewOnFailure: true,
	SuccessMessage:       "Image processed successfully!",
	FailureMessage:       "Failed to process image. Please try again.",
}

// ConvertRules convert an image to another format.
var ConvertRules = Rules[domain.Format]{
	Name:     "convert",
	Validate: ValidateConvert,
	DownloadName: func(request domain.SubmissionRequest) string {
		format, _ := request.Parameter.(domain.TargetFormat)
		return ConvertedName(domain.Format(format))
	},
	SuccessMessage: "Image converted successfully!",
	FailureMessage: "Failed to convert image. Please try again.",
}

func NewResize(transport port.Transport, surface port.Surface, handles port.HandleStore,
	previewer port.Previewer) *ResizeWorkflow {
	return New(ResizeRules, transport, surface, handles, previewer)
}

func NewConvert(transport port.Transport, surface port.Surface, handles port.HandleStore,
	previewer port.Previewer) *ConvertWorkflow {
	return New(ConvertRules, transport, surface, handles, previewer)
}

func ProcessedName(request domain.SubmissionRequest) string {
	return "processed_" + request.File.Name
}

func ConvertedName(format domain.Format) string {
	return "converted." + format.Extension()
}
