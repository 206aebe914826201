package view

import (
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/veukit/veuctl/internal/display"
	"github.com/veukit/veuctl/internal/dmabuf"
	"github.com/veukit/veuctl/internal/input"
	"github.com/veukit/veuctl/internal/pix"
	"github.com/veukit/veuctl/internal/veu"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStateApply(t *testing.T) {
	tests := []struct {
		name string
		keys []input.Key
		want State
	}{
		{"zoom in", []input.Key{input.KeyZoomIn}, State{Zoom: 1.01}},
		{"zoom out", []input.Key{input.KeyZoomOut}, State{Zoom: 0.99}},
		{"pan", []input.Key{input.KeyRight, input.KeyRight, input.KeyDown, input.KeyLeft},
			State{Zoom: 1.0, PanX: 1, PanY: 1}},
		{"reset after sequence",
			[]input.Key{input.KeyZoomIn, input.KeyUp, input.KeyLeft, input.KeyReset},
			State{Zoom: 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			for _, k := range tt.keys {
				if quit, _ := s.Apply(k); quit {
					t.Fatalf("Apply(%v) requested quit", k)
				}
			}
			if math.Abs(s.Zoom-tt.want.Zoom) > 1e-9 {
				t.Errorf("Zoom = %v, want %v", s.Zoom, tt.want.Zoom)
			}
			if s.PanX != tt.want.PanX || s.PanY != tt.want.PanY {
				t.Errorf("pan = (%d,%d), want (%d,%d)", s.PanX, s.PanY, tt.want.PanX, tt.want.PanY)
			}
		})
	}
}

func TestStateZoomCanGoNegative(t *testing.T) {
	s := NewState()
	for i := 0; i < 150; i++ {
		s.Apply(input.KeyZoomOut)
	}
	if s.Zoom > -0.4 {
		t.Errorf("Zoom = %v, want well below zero after 150 steps", s.Zoom)
	}
}

func TestStateQuitAndReload(t *testing.T) {
	s := NewState()
	if quit, _ := s.Apply(input.KeyQuit); !quit {
		t.Error("quit key did not request quit")
	}
	if _, reload := s.Apply(input.KeyReload); !reload {
		t.Error("reload key did not request reload")
	}
}

func TestResolveDefaultsToTestImage(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.In.Format != pix.RGB565 || cfg.In.W != 320 || cfg.In.H != 240 {
		t.Errorf("defaults = %v %dx%d, want RGB565 320x240", cfg.In.Format, cfg.In.W, cfg.In.H)
	}
}

func TestResolveRejectsUnknownFile(t *testing.T) {
	cfg := &Config{InPath: "frame.bin"}
	if err := cfg.Resolve(); err == nil {
		t.Error("Resolve() should fail when nothing can be guessed")
	}
}

func runView(t *testing.T, cfg *Config, disp display.Display, keys <-chan input.Key) {
	t.Helper()
	sess, err := veu.Open(nil)
	if err != nil {
		t.Fatalf("veu.Open() error = %v", err)
	}
	defer sess.Close()

	alloc := dmabuf.New()
	if err := cfg.Run(sess, disp, alloc, keys, discardLogger()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := alloc.Close(); err != nil {
		t.Errorf("allocator leak: %v", err)
	}
}

func TestRunRendersTestImageOnce(t *testing.T) {
	cfg := &Config{In: pix.Surface{Format: pix.RGB565, W: 8, H: 8}}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	m := display.NewMemory(8, 8)
	runView(t, cfg, m, nil)

	front := m.Front()
	at := func(x, y int) uint16 {
		return binary.LittleEndian.Uint16(front.Data[(y*8+x)*2:])
	}
	if got := at(0, 0); got != colorBlack {
		t.Errorf("corner pixel = %#04x, want black", got)
	}
	if got := at(2, 4); got != colorBlue {
		t.Errorf("left rectangle pixel = %#04x, want blue", got)
	}
	if got := at(4, 4); got != colorRed {
		t.Errorf("right rectangle pixel = %#04x, want red", got)
	}
}

func TestRunQuitsOnKey(t *testing.T) {
	cfg := &Config{In: pix.Surface{Format: pix.RGB565, W: 4, H: 4}}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	keys := make(chan input.Key, 4)
	keys <- input.KeyZoomIn
	keys <- input.KeyRight
	keys <- input.KeyQuit

	runView(t, cfg, display.NewMemory(4, 4), keys)
}

func TestRunReloadAdvancesFrame(t *testing.T) {
	// Two 2x2 RGB565 frames: solid red, then solid green.
	frame := func(color uint16) []byte {
		b := make([]byte, 8)
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint16(b[i*2:], color)
		}
		return b
	}
	data := append(frame(colorRed), frame(colorGreen)...)
	path := filepath.Join(t.TempDir(), "frames.rgb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := &Config{InPath: path, In: pix.Surface{W: 2, H: 2}}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.In.Format != pix.RGB565 {
		t.Fatalf("guessed format = %v, want RGB565", cfg.In.Format)
	}

	keys := make(chan input.Key, 2)
	keys <- input.KeyReload
	keys <- input.KeyQuit

	m := display.NewMemory(2, 2)
	runView(t, cfg, m, keys)

	got := binary.LittleEndian.Uint16(m.Front().Data)
	if got != colorGreen {
		t.Errorf("front pixel = %#04x, want green after reload", got)
	}
}

func TestRunStopsAtEndOfFile(t *testing.T) {
	// One frame only: the second reload hits EOF and the loop ends without
	// a quit key.
	data := make([]byte, 8)
	path := filepath.Join(t.TempDir(), "one.rgb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg := &Config{InPath: path, In: pix.Surface{W: 2, H: 2}}
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	keys := make(chan input.Key, 1)
	keys <- input.KeyReload

	runView(t, cfg, display.NewMemory(2, 2), keys)
}
