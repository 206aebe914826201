package dmabuf

import (
	"testing"
	"unsafe"
)

func TestAllocAlignment(t *testing.T) {
	a := New()
	defer a.Close()

	tests := []struct {
		name  string
		n     int
		align int
	}{
		{"default align", 38016, 0},
		{"align 32", 153600, 32},
		{"align 64", 4096, 64},
		{"tiny", 1, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := a.Alloc(tt.n, tt.align)
			if err != nil {
				t.Fatalf("Alloc(%d, %d) error = %v", tt.n, tt.align, err)
			}
			defer a.Free(b)

			if len(b.Bytes()) != tt.n {
				t.Errorf("buffer length = %d, want %d", len(b.Bytes()), tt.n)
			}
			align := tt.align
			if align == 0 {
				align = DefaultAlign
			}
			addr := uintptr(unsafe.Pointer(&b.Bytes()[0]))
			if addr%uintptr(align) != 0 {
				t.Errorf("buffer address %#x not aligned to %d", addr, align)
			}
		})
	}
}

func TestAllocInvalid(t *testing.T) {
	a := New()
	defer a.Close()

	if _, err := a.Alloc(0, 32); err == nil {
		t.Error("Alloc(0) should fail")
	}
	if _, err := a.Alloc(-1, 32); err == nil {
		t.Error("Alloc(-1) should fail")
	}
	if _, err := a.Alloc(16, 3); err == nil {
		t.Error("Alloc with non power-of-two alignment should fail")
	}
}

func TestCloseDetectsLeak(t *testing.T) {
	a := New()
	b, err := a.Alloc(64, 32)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}

	if err := a.Close(); err == nil {
		t.Error("Close with outstanding buffer should fail")
	}

	a.Free(b)
	if err := a.Close(); err != nil {
		t.Errorf("Close after Free error = %v", err)
	}
}
