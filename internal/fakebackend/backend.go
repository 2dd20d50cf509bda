// Package fakebackend serves the chat and upload wire contract from an echo
// router so client code can be exercised without the real service. It is
// for tests only; no production code imports it.
package fakebackend

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ragchat/internal/api"

	"github.com/labstack/echo/v4"
)

// Reply is a canned response. When Raw is set it is written verbatim as
// text/plain instead of encoding Body as JSON.
type Reply struct {
	Status int
	Body   interface{}
	Raw    string
}

// ChatFunc decides the reply to a chat message.
type ChatFunc func(message string) Reply

// UploadFunc decides the reply to an uploaded file.
type UploadFunc func(filename string, data []byte) Reply

// Upload records one received file.
type Upload struct {
	Filename string
	Data     []byte
}

// Backend is an in-memory stand-in for the retrieval service.
type Backend struct {
	mu       sync.Mutex
	chatFn   ChatFunc
	uploadFn UploadFunc
	chats    []string
	uploads  []Upload
	echo     *echo.Echo
}

// New returns a backend that answers every chat with "echo: <message>" and
// accepts every upload.
func New() *Backend {
	b := &Backend{
		chatFn: func(message string) Reply {
			return Reply{Status: http.StatusOK, Body: map[string]string{"response": "echo: " + message}}
		},
		uploadFn: func(filename string, _ []byte) Reply {
			return Reply{Status: http.StatusOK, Body: api.UploadResponse{Status: "success", Filename: filename}}
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.POST(api.ChatPath, b.handleChat)
	e.POST(api.UploadPath, b.handleUpload)
	b.echo = e
	return b
}

// NewServer starts b on a local httptest server closed at test cleanup.
func NewServer(t testing.TB, b *Backend) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// Handler exposes the router.
func (b *Backend) Handler() http.Handler {
	return b.echo
}

// OnChat replaces the chat behaviour.
func (b *Backend) OnChat(fn ChatFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chatFn = fn
}

// OnUpload replaces the upload behaviour.
func (b *Backend) OnUpload(fn UploadFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadFn = fn
}

// Chats returns every message received so far.
func (b *Backend) Chats() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.chats...)
}

// Uploads returns every file received so far.
func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

func (b *Backend) handleChat(c echo.Context) error {
	var req struct {
		Message *string `json:"message"`
	}
	if err := c.Bind(&req); err != nil || req.Message == nil {
		return c.JSON(http.StatusUnprocessableEntity, fieldRequired("message"))
	}

	b.mu.Lock()
	b.chats = append(b.chats, *req.Message)
	fn := b.chatFn
	b.mu.Unlock()

	return write(c, fn(*req.Message))
}

func (b *Backend) handleUpload(c echo.Context) error {
	fh, err := c.FormFile(api.UploadField)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, fieldRequired(api.UploadField))
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{Filename: fh.Filename, Data: data})
	fn := b.uploadFn
	b.mu.Unlock()

	return write(c, fn(fh.Filename, data))
}

func write(c echo.Context, r Reply) error {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if r.Raw != "" {
		return c.String(status, r.Raw)
	}
	if r.Body == nil {
		return c.NoContent(status)
	}
	return c.JSON(status, r.Body)
}

// fieldRequired mimics a FastAPI validation error body.
func fieldRequired(field string) map[string]interface{} {
	return map[string]interface{}{
		"detail": []map[string]interface{}{
			{"loc": []string{"body", field}, "msg": "Field required", "type": "missing"},
		},
	}
}
