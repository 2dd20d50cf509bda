package widget

import (
	"fmt"

	"ragchat/internal/api"

	"github.com/google/uuid"
)

// UploadState is the lifecycle of one submitted file.
type UploadState int

const (
	UploadInProgress UploadState = iota
	UploadSucceeded
	UploadFailed
)

// FailureKind distinguishes why an upload failed.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureHTTP
	FailureConnection
)

// PlaceholderText is shown in an empty upload board.
const PlaceholderText = "No files uploaded yet"

// UploadStatus is the status line of one submitted file.
type UploadStatus struct {
	ID       string
	FileName string
	State    UploadState
	Failure  FailureKind
}

// Text renders the status line.
func (s UploadStatus) Text() string {
	switch s.State {
	case UploadSucceeded:
		return "✓ " + s.FileName
	case UploadFailed:
		if s.Failure == FailureConnection {
			return "✗ Connection Failed: " + s.FileName
		}
		return "✗ Error: " + s.FileName
	default:
		return fmt.Sprintf("Uploading %s...", s.FileName)
	}
}

// UploadBoard tracks every submitted file in submission order plus the
// "no files yet" placeholder. It is not safe for concurrent use.
type UploadBoard struct {
	entries     []UploadStatus
	index       map[string]int
	placeholder bool
}

// NewUploadBoard returns an empty board showing the placeholder.
func NewUploadBoard() *UploadBoard {
	return &UploadBoard{index: make(map[string]int), placeholder: true}
}

// Begin records a new in-progress upload and returns its status.
func (b *UploadBoard) Begin(fileName string) UploadStatus {
	s := UploadStatus{ID: uuid.NewString(), FileName: fileName, State: UploadInProgress}
	b.index[s.ID] = len(b.entries)
	b.entries = append(b.entries, s)
	return s
}

// Complete applies the server outcome to an in-progress upload. A status
// is mutated at most once; later calls and unknown IDs return false.
func (b *UploadBoard) Complete(id string, err error) (UploadStatus, bool) {
	i, ok := b.index[id]
	if !ok || b.entries[i].State != UploadInProgress {
		return UploadStatus{}, false
	}

	s := &b.entries[i]
	switch {
	case err == nil:
		s.State = UploadSucceeded
		b.placeholder = false
	case isStatus(err):
		s.State = UploadFailed
		s.Failure = FailureHTTP
	default:
		s.State = UploadFailed
		s.Failure = FailureConnection
	}
	return *s, true
}

// Get returns the status for id.
func (b *UploadBoard) Get(id string) (UploadStatus, bool) {
	i, ok := b.index[id]
	if !ok {
		return UploadStatus{}, false
	}
	return b.entries[i], true
}

// Entries returns the statuses in submission order.
func (b *UploadBoard) Entries() []UploadStatus {
	out := make([]UploadStatus, len(b.entries))
	copy(out, b.entries)
	return out
}

// ShowPlaceholder reports whether the placeholder is still displayed. It
// goes away on the first successful upload and never comes back.
func (b *UploadBoard) ShowPlaceholder() bool {
	return b.placeholder
}

// Pending counts uploads still in flight.
func (b *UploadBoard) Pending() int {
	n := 0
	for _, s := range b.entries {
		if s.State == UploadInProgress {
			n++
		}
	}
	return n
}

func isStatus(err error) bool {
	_, ok := api.IsStatus(err)
	return ok
}
