package remote

import (
	"bytes"
	"context"
	"fmt"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"mime/multipart"
	"net/http"
	"net/http/httptrace"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// ImageService posts submissions to the remote image processing service.
type ImageService struct {
	baseURL string
	client  *http.Client
}

// NewImageService returns a client for the service at baseURL. No client side timeout is applied.
func NewImageService(baseURL string) *ImageService {
	return &ImageService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (s *ImageService) Send(ctx context.Context, request domain.SubmissionRequest,
	sent func()) (*port.Response, error) {
	payloadBuf, contentType, err := encodeSubmission(request)
	if err != nil {
		return nil, fmt.Errorf("error encoding submission: %w", err)
	}

	url := s.baseURL + request.Parameter.Endpoint()

	var once sync.Once
	markSent := func() {
		if sent != nil {
			once.Do(sent)
		}
	}

	trace := &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				markSent()
			}
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodPost, url, payloadBuf)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("error creating POST request for image service")
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)

	log.Debug().Str("url", url).Int("bytes", payloadBuf.Len()).Msg("posting submission")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	// the response may win the race against the write trace
	markSent()

	log.Debug().Str("url", url).Int("status", res.StatusCode).Msg("image service responded")

	return &port.Response{
		StatusCode:  res.StatusCode,
		StatusText:  statusText(res),
		ContentType: res.Header.Get("Content-Type"),
		Body:        res.Body,
	}, nil
}

func encodeSubmission(request domain.SubmissionRequest) (*bytes.Buffer, string, error) {
	payloadBuf := new(bytes.Buffer)
	writer := multipart.NewWriter(payloadBuf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		escapeQuotes(request.File.Name)))
	header.Set("Content-Type", mimetype.Detect(request.File.Data).String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}

	if _, err := part.Write(request.File.Data); err != nil {
		return nil, "", err
	}

	name, value := request.Parameter.Field()
	if err := writer.WriteField(name, value); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return payloadBuf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// statusText strips the numeric code from the status line, "500 Internal Server Error" -> "Internal Server Error".
func statusText(res *http.Response) string {
	text := strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		return http.StatusText(res.StatusCode)
	}
	return text
}
