package command

import (
	"context"
	"errors"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"imgtool/internal/core/service"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTextSender struct {
	mock.Mock
}

func (m *MockTextSender) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	args := m.Called(ctx, message, text)
	return args.Int(0), args.Error(1)
}

type MockFetcher struct {
	data []byte
	err  error
	urls []string
}

func (m *MockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.urls = append(m.urls, url)
	return m.data, m.err
}

// MockChatSurface records what a chat would see.
type MockChatSurface struct {
	mu       sync.Mutex
	bound    *domain.Message
	errors   []string
	results  []string
	captions []string
}

func (m *MockChatSurface) Bind(_ context.Context, message *domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bound = message
}

func (m *MockChatSurface) SetControlEnabled(bool) {}

func (m *MockChatSurface) ShowBusy(caption string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captions = append(m.captions, caption)
}

func (m *MockChatSurface) HideBusy() {}

func (m *MockChatSurface) ShowError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
}

func (m *MockChatSurface) HideError() {}
func (m *MockChatSurface) ShowSource(domain.Descriptor) {}
func (m *MockChatSurface) HideResult() {}
func (m *MockChatSurface) HidePreview() {}

func (m *MockChatSurface) ShowResult(_ domain.Descriptor, filename string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, filename)
}

type MockHandles struct{}

func (MockHandles) Create([]byte, string) (domain.Handle, error) { return "handle", nil }
func (MockHandles) Revoke(domain.Handle) {}

type MockTransport struct {
	status   int
	body     string
	requests []domain.SubmissionRequest
	block    chan struct{}
	started  chan struct{}
}

func (m *MockTransport) Send(_ context.Context, request domain.SubmissionRequest, sent func()) (*port.Response, error) {
	m.requests = append(m.requests, request)
	sent()
	if m.started != nil {
		close(m.started)
	}
	if m.block != nil {
		<-m.block
	}
	return &port.Response{
		StatusCode: m.status,
		StatusText: http.StatusText(m.status),
		Body:       io.NopCloser(strings.NewReader(m.body)),
	}, nil
}

type fixture struct {
	sessions  *service.Sessions
	transport *MockTransport
	surfaces  map[int64][]*MockChatSurface
}

func newFixture(status int, body string) *fixture {
	f := &fixture{
		transport: &MockTransport{status: status, body: body},
		surfaces:  make(map[int64][]*MockChatSurface),
	}
	f.sessions = service.NewSessions(service.Dependencies{
		Transport: f.transport,
		Handles:   MockHandles{},
		Surface: func(chatID int64) port.ChatSurface {
			s := &MockChatSurface{}
			f.surfaces[chatID] = append(f.surfaces[chatID], s)
			return s
		},
	}, 0)
	return f
}

// resize returns the resize surface of a chat, convert the convert surface.
func (f *fixture) resize(chatID int64) *MockChatSurface  { return f.surfaces[chatID][0] }
func (f *fixture) convert(chatID int64) *MockChatSurface { return f.surfaces[chatID][1] }

func imageMessage(text string) *domain.Message {
	return &domain.Message{
		ID:       7,
		ChatID:   42,
		Text:     text,
		FileURL:  "http://files/photo.jpg",
		FileName: "photo.jpg",
		FileSize: 5,
	}
}

func TestResizeRespond(t *testing.T) {
	f := newFixture(http.StatusOK, "small")
	fetcher := &MockFetcher{data: []byte("large")}
	ts := new(MockTextSender)

	cmd := NewResize(f.sessions, fetcher, ts, "/resize")
	assert.Equal(t, "/resize", cmd.GetCommand())

	msg := imageMessage("/resize 200")
	require.NoError(t, cmd.Respond(testContext(t), msg))

	require.Len(t, f.transport.requests, 1)
	req := f.transport.requests[0]
	assert.Equal(t, domain.TargetSizeKB(200), req.Parameter)
	assert.Equal(t, "photo.jpg", req.File.Name)
	assert.Equal(t, []byte("large"), req.File.Data)
	assert.Equal(t, []string{"http://files/photo.jpg"}, fetcher.urls)

	s := f.resize(42)
	assert.Equal(t, msg, s.bound)
	assert.Equal(t, []string{"processed_photo.jpg"}, s.results)
	assert.Equal(t, []string{domain.CaptionUploading, domain.CaptionProcessing}, s.captions)
	ts.AssertNotCalled(t, "SendMessageReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestResizeRespondValidation(t *testing.T) {
	tests := []struct {
		name    string
		message *domain.Message
		want    string
	}{
		{name: "no image", message: &domain.Message{ChatID: 1, Text: "/resize 100"}, want: domain.MessageMissingFile},
		{name: "no size", message: imageMessage("/resize"), want: domain.MessageOutOfRange},
		{name: "too small", message: imageMessage("/resize 9"), want: domain.MessageOutOfRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(http.StatusOK, "x")
			ts := new(MockTextSender)
			cmd := NewResize(f.sessions, &MockFetcher{data: []byte("x")}, ts, "/resize")

			require.NoError(t, cmd.Respond(testContext(t), tc.message))

			assert.Empty(t, f.transport.requests)
			assert.Equal(t, []string{tc.want}, f.resize(tc.message.ChatID).errors)
		})
	}
}

func TestResizeRespondFetchFailed(t *testing.T) {
	f := newFixture(http.StatusOK, "x")
	ts := new(MockTextSender)
	msg := imageMessage("/resize 100")
	ts.On("SendMessageReply", mock.Anything, msg, "Error: failed to fetch image: mock error").Return(1, nil)

	cmd := NewResize(f.sessions, &MockFetcher{err: errors.New("mock error")}, ts, "/resize")

	require.NoError(t, cmd.Respond(testContext(t), msg))
	assert.Empty(t, f.transport.requests)
	ts.AssertExpectations(t)
}

func TestResizeRespondFileTooLarge(t *testing.T) {
	f := newFixture(http.StatusOK, "x")
	ts := new(MockTextSender)
	fetcher := &MockFetcher{data: []byte("x")}
	msg := imageMessage("/resize 100")
	msg.FileSize = domain.MaxUploadBytes + 1
	ts.On("SendMessageReply", mock.Anything, msg, "Error: "+domain.ErrFileTooLarge.Error()).Return(1, nil)

	require.NoError(t, NewResize(f.sessions, fetcher, ts, "/resize").Respond(testContext(t), msg))
	assert.Empty(t, fetcher.urls)
	ts.AssertExpectations(t)
}

func TestResizeRespondReplyFailed(t *testing.T) {
	f := newFixture(http.StatusOK, "x")
	ts := new(MockTextSender)
	ts.On("SendMessageReply", mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("send failed"))

	cmd := NewResize(f.sessions, &MockFetcher{err: errors.New("mock error")}, ts, "/resize")

	err := cmd.Respond(testContext(t), imageMessage("/resize 100"))
	require.EqualError(t, err, "send failed")
}

func TestResizeRespondBusy(t *testing.T) {
	f := newFixture(http.StatusOK, "x")
	f.transport.block = make(chan struct{})
	f.transport.started = make(chan struct{})

	ts := new(MockTextSender)
	ts.On("SendMessageReply", mock.Anything, mock.Anything,
		"A resize is already in progress, please wait for it to finish.").Return(1, nil).Once()

	cmd := NewResize(f.sessions, &MockFetcher{data: []byte("x")}, ts, "/resize")

	done := make(chan error)
	go func() {
		done <- cmd.Respond(context.Background(), imageMessage("/resize 100"))
	}()

	<-f.transport.started
	require.NoError(t, cmd.Respond(testContext(t), imageMessage("/resize 300")))

	close(f.transport.block)
	require.NoError(t, <-done)

	assert.Len(t, f.transport.requests, 1)
	ts.AssertExpectations(t)
}

func TestConvertRespond(t *testing.T) {
	f := newFixture(http.StatusOK, "webp")
	ts := new(MockTextSender)

	cmd := NewConvert(f.sessions, &MockFetcher{data: []byte("png")}, ts, "/convert")
	assert.Equal(t, "/convert", cmd.GetCommand())

	require.NoError(t, cmd.Respond(testContext(t), imageMessage("/convert JPG")))

	require.Len(t, f.transport.requests, 1)
	assert.Equal(t, domain.TargetFormat(domain.FormatJPG), f.transport.requests[0].Parameter)
	assert.Equal(t, []string{"converted.jpeg"}, f.convert(42).results)
	assert.Empty(t, f.resize(42).results)
}

func TestConvertRespondServerError(t *testing.T) {
	f := newFixture(http.StatusBadRequest, "Unsupported format: heic")
	ts := new(MockTextSender)

	cmd := NewConvert(f.sessions, &MockFetcher{data: []byte("png")}, ts, "/convert")

	require.NoError(t, cmd.Respond(testContext(t), imageMessage("/convert png")))
	assert.Equal(t, []string{"Error: Server error: Unsupported format: heic"}, f.convert(42).errors)
}

func TestConvertRespondUsage(t *testing.T) {
	for _, text := range []string{"/convert", "/convert svg"} {
		t.Run(text, func(t *testing.T) {
			f := newFixture(http.StatusOK, "x")
			ts := new(MockTextSender)
			msg := imageMessage(text)
			ts.On("SendMessageReply", mock.Anything, msg,
				"usage: /convert <jpeg|jpg|png|gif|webp|bmp|tiff|tif>, as reply to an image").Return(1, nil)

			require.NoError(t, NewConvert(f.sessions, &MockFetcher{}, ts, "/convert").Respond(testContext(t), msg))
			assert.Empty(t, f.transport.requests)
			ts.AssertExpectations(t)
		})
	}
}

func TestStatusRespond(t *testing.T) {
	f := newFixture(http.StatusOK, "x")
	ts := new(MockTextSender)

	require.NoError(t, NewResize(f.sessions, &MockFetcher{data: []byte("x")}, ts, "/resize").
		Respond(testContext(t), imageMessage("/resize 100")))

	msg := &domain.Message{ChatID: 42, Text: "/status"}
	ts.On("SendMessageReply", mock.Anything, msg,
		"resize: succeeded\nconvert: idle\ntarget size: 10-1000 KB\n").Return(1, nil)

	cmd := NewStatus(f.sessions, ts, "/status")
	assert.Equal(t, "/status", cmd.GetCommand())
	require.NoError(t, cmd.Respond(testContext(t), msg))
	ts.AssertExpectations(t)
}
