// Package uploader drives the upload board without a terminal UI: batch
// submission from the command line and a drop folder watched for new files.
package uploader

import (
	"context"
	"sync"

	"ragchat/internal/api"
	"ragchat/internal/logging"
	"ragchat/internal/widget"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel requests in a batch.
const DefaultConcurrency = 4

// Options configures an Uploader.
type Options struct {
	Concurrency int
	// OnUpdate is called after every status change (begin and complete).
	// Calls are serialized.
	OnUpdate func(widget.UploadStatus)
}

// Uploader submits files to the upload endpoint and records each outcome
// on a shared board.
type Uploader struct {
	backend     widget.UploadBackend
	concurrency int
	onUpdate    func(widget.UploadStatus)
	// slots bounds in-flight requests across every SubmitAll call.
	slots chan struct{}

	mu    sync.Mutex
	board *widget.UploadBoard
}

// New returns an Uploader with an empty board.
func New(backend widget.UploadBackend, opts Options) *Uploader {
	n := opts.Concurrency
	if n < 1 {
		n = DefaultConcurrency
	}
	return &Uploader{
		backend:     backend,
		concurrency: n,
		onUpdate:    opts.OnUpdate,
		slots:       make(chan struct{}, n),
		board:       widget.NewUploadBoard(),
	}
}

// Entries returns a snapshot of the board.
func (u *Uploader) Entries() []widget.UploadStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.board.Entries()
}

// ShowPlaceholder reports whether no upload has succeeded yet.
func (u *Uploader) ShowPlaceholder() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.board.ShowPlaceholder()
}

// SubmitAll registers every file immediately, in order, then uploads them
// concurrently, never exceeding the concurrency limit across concurrent
// callers. One failure never stops the others. The returned statuses
// are in submission order.
func (u *Uploader) SubmitAll(ctx context.Context, files []widget.File) []widget.UploadStatus {
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = u.begin(f.Name).ID
	}

	var g errgroup.Group
	g.SetLimit(u.concurrency)
	for i, f := range files {
		id, f := ids[i], f
		g.Go(func() error {
			u.run(ctx, id, f)
			return nil
		})
	}
	_ = g.Wait()

	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]widget.UploadStatus, len(ids))
	for i, id := range ids {
		out[i], _ = u.board.Get(id)
	}
	return out
}

// Submit uploads one file synchronously.
func (u *Uploader) Submit(ctx context.Context, f widget.File) widget.UploadStatus {
	return u.SubmitAll(ctx, []widget.File{f})[0]
}

// run uploads f once a slot is free. Cancellation while waiting counts as
// a transport failure.
func (u *Uploader) run(ctx context.Context, id string, f widget.File) {
	select {
	case u.slots <- struct{}{}:
		defer func() { <-u.slots }()
	case <-ctx.Done():
		u.complete(id, &api.TransportError{Op: "upload", Err: ctx.Err()})
		return
	}
	u.complete(id, widget.RunUpload(ctx, u.backend, f))
}

func (u *Uploader) begin(name string) widget.UploadStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.board.Begin(name)
	logging.Upload("upload %s started (id=%s)", name, s.ID)
	u.notify(s)
	return s
}

func (u *Uploader) complete(id string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.board.Complete(id, err)
	if !ok {
		return
	}
	if err != nil {
		logging.Get(logging.CategoryUpload).Warn("upload %s failed: %v", s.FileName, err)
	} else {
		logging.Upload("upload %s succeeded", s.FileName)
	}
	u.notify(s)
}

// notify runs with u.mu held, which serializes callbacks.
func (u *Uploader) notify(s widget.UploadStatus) {
	if u.onUpdate != nil {
		u.onUpdate(s)
	}
}

// Failed reports whether any status ended in failure.
func Failed(statuses []widget.UploadStatus) bool {
	for _, s := range statuses {
		if s.State == widget.UploadFailed {
			return true
		}
	}
	return false
}
