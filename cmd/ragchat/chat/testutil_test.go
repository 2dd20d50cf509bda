// Test utilities for the chat package: a scriptable backend, model
// construction options and helpers for running commands.
package chat

import (
	"context"
	"io"
	"sync"
	"testing"

	"ragchat/internal/api"
	"ragchat/internal/config"
	"ragchat/internal/widget"

	tea "github.com/charmbracelet/bubbletea"
)

// MockBackend records every call and answers from the configured funcs.
type MockBackend struct {
	mu       sync.Mutex
	chats    []string
	uploads  []string
	ChatFn   func(ctx context.Context, message string) (string, error)
	UploadFn func(ctx context.Context, name string, data []byte) error
}

// NewMockBackend returns a backend that echoes chats and accepts uploads.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (b *MockBackend) Chat(ctx context.Context, message string) (string, error) {
	b.mu.Lock()
	b.chats = append(b.chats, message)
	fn := b.ChatFn
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, message)
	}
	return "echo: " + message, nil
}

func (b *MockBackend) Upload(ctx context.Context, name string, r io.Reader) (*api.UploadResponse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &api.TransportError{Op: "upload", Err: err}
	}
	b.mu.Lock()
	b.uploads = append(b.uploads, name)
	fn := b.UploadFn
	b.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, name, data); err != nil {
			return nil, err
		}
	}
	return &api.UploadResponse{Status: "success", Filename: name}, nil
}

// Chats returns the messages received so far.
func (b *MockBackend) Chats() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.chats...)
}

// Uploads returns the file names received so far.
func (b *MockBackend) Uploads() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

// TestModelOption configures a test model.
type TestModelOption func(*Config)

// WithBackend sets the backend.
func WithBackend(b widget.Backend) TestModelOption {
	return func(c *Config) {
		c.Backend = b
	}
}

// WithPickerDir sets the picker start directory.
func WithPickerDir(dir string) TestModelOption {
	return func(c *Config) {
		c.PickerDir = dir
	}
}

// WithMarkdown enables glamour rendering of replies.
func WithMarkdown() TestModelOption {
	return func(c *Config) {
		c.UI.Markdown = true
	}
}

// WithPort sets the port quoted in connection errors.
func WithPort(port string) TestModelOption {
	return func(c *Config) {
		c.Port = port
	}
}

// NewTestModel creates a sized Model with a mock backend.
func NewTestModel(t *testing.T, opts ...TestModelOption) Model {
	t.Helper()
	cfg := Config{
		Backend:   NewMockBackend(),
		UI:        *config.DefaultUIConfig(),
		PickerDir: t.TempDir(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := New(cfg)
	t.Cleanup(m.Shutdown)

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return newModel.(Model)
}

// update feeds msg to m and returns the resulting model and command.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	newModel, cmd := m.Update(msg)
	result, ok := newModel.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", newModel)
	}
	return result, cmd
}

// runCmd executes cmd and every command nested in batches, returning the
// produced messages in batch order.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// deliver runs cmd and feeds every resulting message back into m.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		m, _ = update(t, m, msg)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func paste(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Paste: true}
}
