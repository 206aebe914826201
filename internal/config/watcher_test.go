package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// The display command watches the raw frame file it is showing, so the
// watcher is tested with a frame loader rather than a config parser.
const testFrameBytes = 8 // one 2x2 RGB565 frame

type frameFile struct {
	Frames int
	Data   []byte
}

func loadFrameFile(path string) (frameFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return frameFile{}, err
	}
	if len(data)%testFrameBytes != 0 {
		return frameFile{}, fmt.Errorf("truncated frame file: %d bytes", len(data))
	}
	return frameFile{Frames: len(data) / testFrameBytes, Data: data}, nil
}

func writeFrames(t *testing.T, path string, frames int, fill byte) {
	t.Helper()
	data := bytes.Repeat([]byte{fill}, frames*testFrameBytes)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatcher(t *testing.T, w *Watcher[frameFile]) {
	t.Helper()
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
	// Give the watch loop a moment to come up before touching the file.
	time.Sleep(100 * time.Millisecond)
}

func TestFileWatcher_ReloadOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.rgb")
	writeFrames(t, path, 1, 0x00)

	reloaded := make(chan frameFile, 1)
	w := NewFileWatcher(path, loadFrameFile, quietLogger(),
		WithDebounce[frameFile](50*time.Millisecond))
	w.OnReload(func(f frameFile) {
		reloaded <- f
	})
	startWatcher(t, w)

	writeFrames(t, path, 3, 0xAB)

	select {
	case f := <-reloaded:
		if f.Frames != 3 {
			t.Errorf("reloaded %d frames, want 3", f.Frames)
		}
		if f.Data[0] != 0xAB {
			t.Error("handler received stale frame data")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestFileWatcher_DebounceCoalesces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.rgb")
	writeFrames(t, path, 1, 0x00)

	var reloads atomic.Int32
	var lastFrames atomic.Int32
	w := NewFileWatcher(path, loadFrameFile, quietLogger(),
		WithDebounce[frameFile](200*time.Millisecond))
	w.OnReload(func(f frameFile) {
		reloads.Add(1)
		lastFrames.Store(int32(f.Frames))
	})
	startWatcher(t, w)

	// A burst of writes inside the debounce window collapses into one
	// reload carrying the final content.
	for i := 1; i <= 5; i++ {
		writeFrames(t, path, i, byte(i))
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	if got := reloads.Load(); got != 1 {
		t.Errorf("reloads = %d, want 1", got)
	}
	if got := lastFrames.Load(); got != 5 {
		t.Errorf("final frame count = %d, want 5", got)
	}
}

func TestFileWatcher_Unsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.rgb")
	writeFrames(t, path, 1, 0x00)

	var kept, dropped atomic.Int32
	w := NewFileWatcher(path, loadFrameFile, quietLogger(),
		WithDebounce[frameFile](50*time.Millisecond))
	w.OnReload(func(frameFile) { kept.Add(1) })
	unsub := w.OnReload(func(frameFile) { dropped.Add(1) })
	startWatcher(t, w)

	writeFrames(t, path, 2, 0x01)
	time.Sleep(300 * time.Millisecond)

	unsub()
	writeFrames(t, path, 3, 0x02)
	time.Sleep(300 * time.Millisecond)

	if got := kept.Load(); got != 2 {
		t.Errorf("kept handler called %d times, want 2", got)
	}
	if got := dropped.Load(); got != 1 {
		t.Errorf("unsubscribed handler called %d times, want 1", got)
	}
}

func TestFileWatcher_ErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.rgb")
	writeFrames(t, path, 1, 0x00)

	loadErrs := make(chan error, 1)
	reloaded := make(chan frameFile, 1)
	w := NewFileWatcher(path, loadFrameFile, quietLogger(),
		WithDebounce[frameFile](50*time.Millisecond),
		WithErrorHandler[frameFile](func(err error) {
			loadErrs <- err
		}))
	w.OnReload(func(f frameFile) {
		reloaded <- f
	})
	startWatcher(t, w)

	// A partial frame fails the loader; reload handlers stay silent.
	if err := os.WriteFile(path, make([]byte, testFrameBytes-3), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case <-loadErrs:
	case <-reloaded:
		t.Fatal("reload handler called for an unloadable file")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.rgb")
	writeFrames(t, path, 1, 0x00)

	var reloads atomic.Int32
	w := NewFileWatcher(path, loadFrameFile, quietLogger(),
		WithDebounce[frameFile](50*time.Millisecond))
	w.OnReload(func(frameFile) { reloads.Add(1) })

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	writeFrames(t, path, 2, 0x01)
	time.Sleep(300 * time.Millisecond)

	if got := reloads.Load(); got != 0 {
		t.Errorf("handler called %d times after Stop, want 0", got)
	}
}
