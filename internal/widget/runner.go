package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ragchat/internal/api"
)

// ChatBackend performs one chat exchange.
type ChatBackend interface {
	Chat(ctx context.Context, message string) (string, error)
}

// UploadBackend performs one upload.
type UploadBackend interface {
	Upload(ctx context.Context, name string, r io.Reader) (*api.UploadResponse, error)
}

// Backend is both halves of the service.
type Backend interface {
	ChatBackend
	UploadBackend
}

// File is a named, openable file handle from a picker, a drop or the
// command line.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// LocalFile wraps a path on disk.
func LocalFile(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// RunChat performs the request for a message returned by BeginSend. It
// always returns, so the caller can always release the loader: a panic in
// the backend is recovered and reported as a transport failure.
func RunChat(ctx context.Context, b ChatBackend, text string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = &api.TransportError{Op: "chat", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return b.Chat(ctx, text)
}

// RunUpload opens f and uploads it. A file that cannot be opened counts as
// a transport failure.
func RunUpload(ctx context.Context, b UploadBackend, f File) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &api.TransportError{Op: "upload", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	rc, err := f.Open()
	if err != nil {
		return &api.TransportError{Op: "upload", Err: err}
	}
	defer rc.Close()

	_, err = b.Upload(ctx, f.Name, rc)
	return err
}

// ErrIgnored is returned by SendMessage when the input was empty or a
// request was already in flight.
var ErrIgnored = errors.New("send ignored: empty input or request in flight")

// SendMessage runs a full exchange synchronously: BeginSend, the request,
// CompleteSend. It returns the AI message together with the request error,
// which is nil on success; the message is in the transcript either way.
func (s *State) SendMessage(ctx context.Context, b ChatBackend, raw string) (Message, error) {
	text, ok := s.BeginSend(raw)
	if !ok {
		return Message{}, ErrIgnored
	}
	reply, err := RunChat(ctx, b, text)
	msg, _ := s.CompleteSend(reply, err)
	return msg, err
}
