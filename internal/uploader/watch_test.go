package uploader

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"ragchat/internal/widget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, u *Uploader, dir string) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- u.Watch(ctx, dir, WatchOptions{
			Settle:  50 * time.Millisecond,
			OnReady: func() { close(ready) },
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		cancel()
		t.Fatalf("watch exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watch never became ready")
	}

	return func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop")
		}
	}
}

func TestWatch_UploadsNewFilesOnce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("old"), 0644))

	backend := &recordingBackend{}
	u := New(backend, Options{})
	stop := startWatch(t, u, dir)
	defer stop()

	path := filepath.Join(dir, "dropped.txt")
	require.NoError(t, os.WriteFile(path, []byte("part one"), 0644))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, _ = f.WriteString(" part two")
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		entries := u.Entries()
		return len(entries) == 1 && entries[0].State == widget.UploadSucceeded
	}, 5*time.Second, 20*time.Millisecond)

	// A later rewrite of an uploaded file is not sent again.
	require.NoError(t, os.WriteFile(path, []byte("rewritten"), 0644))
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, []string{"dropped.txt"}, backend.Names())
	assert.False(t, u.ShowPlaceholder())
}

func TestWatch_IgnoresWritesToExistingFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	backend := &recordingBackend{}
	u := New(backend, Options{})
	stop := startWatch(t, u, dir)
	defer stop()

	f, err := os.OpenFile(existing, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, _ = f.WriteString(" more")
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fresh.txt"), []byte("new"), 0644))

	require.Eventually(t, func() bool {
		return len(backend.Names()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, []string{"fresh.txt"}, backend.Names())
}

func TestWatch_RespectsConcurrency(t *testing.T) {
	dir := t.TempDir()
	backend := &recordingBackend{delay: 150 * time.Millisecond}
	u := New(backend, Options{Concurrency: 1})
	stop := startWatch(t, u, dir)
	defer stop()

	for _, name := range []string{"1.txt", "2.txt", "3.txt", "4.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}

	require.Eventually(t, func() bool {
		entries := u.Entries()
		if len(entries) != 4 {
			return false
		}
		for _, e := range entries {
			if e.State != widget.UploadSucceeded {
				return false
			}
		}
		return true
	}, 10*time.Second, 20*time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.peak))
}

func TestWatch_IgnoresHiddenPartialAndDirs(t *testing.T) {
	dir := t.TempDir()
	backend := &recordingBackend{}
	u := New(backend, Options{})
	stop := startWatch(t, u, dir)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video.mp4.part"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.pdf"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		return len(backend.Names()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, []string{"real.pdf"}, backend.Names())
}

func TestWatch_StopCancelsInFlight(t *testing.T) {
	dir := t.TempDir()
	backend := &recordingBackend{delay: 10 * time.Second}
	u := New(backend, Options{})
	stop := startWatch(t, u, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "slow.txt"), []byte("x"), 0644))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&backend.inFlight) == 1
	}, 5*time.Second, 10*time.Millisecond)

	stop()

	entries := u.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, widget.FailureConnection, entries[0].Failure)
}

func TestWatch_RejectsNonDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	u := New(&recordingBackend{}, Options{})
	assert.Error(t, u.Watch(context.Background(), path, WatchOptions{}))
	assert.Error(t, u.Watch(context.Background(), filepath.Join(path, "missing"), WatchOptions{}))
}

func TestSettler(t *testing.T) {
	s := newSettler(30 * time.Millisecond)
	var calls int32
	for i := 0; i < 5; i++ {
		s.Touch("k", func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 1, s.Pending())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Pending())

	s.Touch("k2", func() { atomic.AddInt32(&calls, 1) })
	s.Close()
	s.Touch("k3", func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, s.Pending())
}

func TestEligible(t *testing.T) {
	assert.True(t, eligible("/tmp/drop/lecture.pdf"))
	assert.False(t, eligible("/tmp/drop/.DS_Store"))
	assert.False(t, eligible("/tmp/drop/notes.txt~"))
	assert.False(t, eligible("/tmp/drop/movie.crdownload"))
}
