package port

import (
	"context"
	"imgtool/internal/core/domain"
	"io"
)

// Response is what the transport hands back once the service has answered.
type Response struct {
	StatusCode  int
	StatusText  string
	ContentType string
	Body        io.ReadCloser
}

type Transport interface {
	// Send posts the submission to the service. sent is invoked once the request has been fully written,
	// before the response is awaited. An error means no response was obtained.
	Send(ctx context.Context, request domain.SubmissionRequest, sent func()) (*Response, error)
}

type FileFetcher interface {
	// Fetch returns the content behind a remote file URL.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
