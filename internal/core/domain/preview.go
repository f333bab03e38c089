package domain

// Handle references content held by a HandleStore until it is revoked.
type Handle string

type Descriptor struct {
	Handle    Handle
	SizeLabel string
}

type PreviewState struct {
	Source *Descriptor
	Result *Descriptor
}
