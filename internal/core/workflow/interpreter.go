package workflow

import (
	"context"
	"errors"
	"fmt"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"io"
	"net"
	"net/http"
	"syscall"
)

// Interpret classifies the result of a transport call. err is the transport error, in which case res is
// ignored. The response body is always consumed and closed.
func Interpret(res *port.Response, err error) domain.Outcome {
	if err != nil {
		if isConnectionFailure(err) {
			return &domain.Failure{Kind: domain.NetworkUnreachable, Diagnostic: err.Error()}
		}
		return &domain.Failure{Kind: domain.Unknown, Diagnostic: err.Error()}
	}

	if res == nil {
		return &domain.Failure{Kind: domain.Unknown, Diagnostic: "no response"}
	}

	var body []byte
	var readErr error
	if res.Body != nil {
		body, readErr = io.ReadAll(res.Body)
		_ = res.Body.Close()
	}

	if res.StatusCode != http.StatusOK {
		diagnostic := fmt.Sprintf("Server error (%d): %s", res.StatusCode, res.StatusText)
		if readErr == nil && len(body) > 0 {
			diagnostic = "Server error: " + string(body)
		}
		return &domain.Failure{Kind: domain.ServerError, Diagnostic: diagnostic, StatusCode: res.StatusCode}
	}

	if readErr != nil {
		return &domain.Failure{Kind: domain.Unknown, Diagnostic: readErr.Error()}
	}

	if body == nil {
		body = []byte{}
	}

	return domain.Success{Bytes: body, MimeType: res.ContentType}
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
