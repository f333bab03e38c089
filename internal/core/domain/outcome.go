package domain

import "fmt"

// Outcome is either Success or *Failure.
type Outcome interface {
	isOutcome()
}

type Success struct {
	Bytes    []byte
	MimeType string
}

func (Success) isOutcome() {}

type FailureKind int

const (
	Unknown FailureKind = iota
	NetworkUnreachable
	ServerError
)

func (k FailureKind) String() string {
	switch k {
	case NetworkUnreachable:
		return "network_unreachable"
	case ServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

type Failure struct {
	Kind       FailureKind
	Diagnostic string
	// StatusCode is set for ServerError only.
	StatusCode int
}

func (*Failure) isOutcome() {}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Diagnostic)
}

// DisplayMessage is the text shown in the error region. fallback is used when there is no diagnostic.
func (f *Failure) DisplayMessage(fallback string) string {
	if f.Kind == NetworkUnreachable {
		return MessageNetworkUnreachable
	}
	if f.Diagnostic == "" {
		return fallback
	}
	return "Error: " + f.Diagnostic
}
