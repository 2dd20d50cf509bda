package uploader

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ragchat/internal/api"
	"ragchat/internal/fakebackend"
	"ragchat/internal/widget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// recordingBackend fails any file named in failures and tracks peak
// concurrency.
type recordingBackend struct {
	mu       sync.Mutex
	failures map[string]error
	delay    time.Duration
	names    []string

	inFlight int32
	peak     int32
}

func (b *recordingBackend) Upload(ctx context.Context, name string, r io.Reader) (*api.UploadResponse, error) {
	n := atomic.AddInt32(&b.inFlight, 1)
	defer atomic.AddInt32(&b.inFlight, -1)
	for {
		p := atomic.LoadInt32(&b.peak)
		if n <= p || atomic.CompareAndSwapInt32(&b.peak, p, n) {
			break
		}
	}

	_, _ = io.ReadAll(r)
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return nil, &api.TransportError{Op: "upload", Err: ctx.Err()}
		}
	}

	b.mu.Lock()
	b.names = append(b.names, name)
	err := b.failures[name]
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &api.UploadResponse{Status: "success", Filename: name}, nil
}

func (b *recordingBackend) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.names...)
}

func writeFiles(t *testing.T, dir string, names ...string) []widget.File {
	t.Helper()
	files := make([]widget.File, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("content of "+name), 0644))
		files[i] = widget.LocalFile(path)
	}
	return files
}

func TestSubmitAll_IndependentOutcomes(t *testing.T) {
	backend := &recordingBackend{failures: map[string]error{
		"broken.pdf": &api.StatusError{Op: "upload", StatusCode: http.StatusInternalServerError},
	}}
	u := New(backend, Options{})
	files := writeFiles(t, t.TempDir(), "broken.pdf", "good.txt")

	statuses := u.SubmitAll(context.Background(), files)
	require.Len(t, statuses, 2)

	assert.Equal(t, "broken.pdf", statuses[0].FileName)
	assert.Equal(t, widget.UploadFailed, statuses[0].State)
	assert.Equal(t, widget.FailureHTTP, statuses[0].Failure)
	assert.Contains(t, statuses[0].Text(), "broken.pdf")

	assert.Equal(t, "good.txt", statuses[1].FileName)
	assert.Equal(t, widget.UploadSucceeded, statuses[1].State)

	assert.True(t, Failed(statuses))
	assert.False(t, u.ShowPlaceholder())
	assert.ElementsMatch(t, []string{"broken.pdf", "good.txt"}, backend.Names())
}

func TestSubmitAll_MissingFileIsConnectionFailure(t *testing.T) {
	backend := &recordingBackend{}
	u := New(backend, Options{})

	s := u.Submit(context.Background(), widget.LocalFile(filepath.Join(t.TempDir(), "gone.txt")))
	assert.Equal(t, widget.UploadFailed, s.State)
	assert.Equal(t, widget.FailureConnection, s.Failure)
	assert.Equal(t, "✗ Connection Failed: gone.txt", s.Text())
	assert.True(t, u.ShowPlaceholder())
	assert.Empty(t, backend.Names())
}

func TestSubmitAll_RespectsConcurrency(t *testing.T) {
	backend := &recordingBackend{delay: 30 * time.Millisecond}
	u := New(backend, Options{Concurrency: 2})
	files := writeFiles(t, t.TempDir(), "1.txt", "2.txt", "3.txt", "4.txt", "5.txt", "6.txt")

	statuses := u.SubmitAll(context.Background(), files)
	assert.False(t, Failed(statuses))
	assert.LessOrEqual(t, atomic.LoadInt32(&backend.peak), int32(2))
	assert.Len(t, u.Entries(), 6)
}

func TestSubmitAll_LimitSharedAcrossCalls(t *testing.T) {
	backend := &recordingBackend{delay: 30 * time.Millisecond}
	u := New(backend, Options{Concurrency: 2})
	dir := t.TempDir()
	batches := [][]widget.File{
		writeFiles(t, dir, "a1.txt", "a2.txt", "a3.txt"),
		writeFiles(t, dir, "b1.txt", "b2.txt", "b3.txt"),
	}

	var wg sync.WaitGroup
	for _, files := range batches {
		files := files
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.SubmitAll(context.Background(), files)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&backend.peak), int32(2))
	assert.Len(t, backend.Names(), 6)
}

func TestSubmitAll_CancelledWhileWaiting(t *testing.T) {
	backend := &recordingBackend{}
	u := New(backend, Options{Concurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A held slot forces the upload to wait, where it sees the cancellation.
	u.slots <- struct{}{}
	s := u.Submit(ctx, writeFiles(t, t.TempDir(), "late.txt")[0])
	<-u.slots

	assert.Equal(t, widget.FailureConnection, s.Failure)
	assert.Empty(t, backend.Names())
}

func TestSubmitAll_OnUpdateSequence(t *testing.T) {
	var mu sync.Mutex
	var events []widget.UploadState
	u := New(&recordingBackend{}, Options{OnUpdate: func(s widget.UploadStatus) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s.State)
	}})

	u.SubmitAll(context.Background(), writeFiles(t, t.TempDir(), "a.txt"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []widget.UploadState{widget.UploadInProgress, widget.UploadSucceeded}, events)
}

func TestSubmitAll_OverHTTP(t *testing.T) {
	b := fakebackend.New()
	b.OnUpload(func(filename string, _ []byte) fakebackend.Reply {
		if filename == "fail.bin" {
			return fakebackend.Reply{Status: http.StatusInternalServerError, Body: map[string]string{"detail": "cannot index"}}
		}
		return fakebackend.Reply{Status: http.StatusOK, Body: api.UploadResponse{Status: "success", Filename: filename}}
	})
	srv := fakebackend.NewServer(t, b)

	hc := &http.Client{Timeout: 5 * time.Second}
	defer hc.CloseIdleConnections()
	client, err := api.NewClient(api.Options{BaseURL: srv.URL, HTTPClient: hc})
	require.NoError(t, err)

	u := New(client, Options{})
	statuses := u.SubmitAll(context.Background(), writeFiles(t, t.TempDir(), "fail.bin", "ok.md"))

	assert.Equal(t, "✗ Error: fail.bin", statuses[0].Text())
	assert.Equal(t, "✓ ok.md", statuses[1].Text())
	assert.Len(t, b.Uploads(), 2)
}

func TestFailed(t *testing.T) {
	assert.False(t, Failed(nil))
	assert.False(t, Failed([]widget.UploadStatus{{State: widget.UploadSucceeded}}))
	assert.True(t, Failed([]widget.UploadStatus{{State: widget.UploadSucceeded}, {State: widget.UploadFailed}}))
}
