// Package dmabuf provides the aligned buffer allocator backing VEU
// surfaces. Frame buffers are allocated once before the processing loop and
// freed once after it; there is no per-frame allocation.
package dmabuf

import (
	"fmt"
	"sync"
	"unsafe"
)

// DefaultAlign is the alignment the VEU requires for frame buffers.
const DefaultAlign = 32

// Buffer is a single allocation handed out by an Allocator.
type Buffer struct {
	data []byte
	raw  []byte
}

// Bytes returns the aligned payload of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Allocator hands out buffers suitable for hardware DMA.
type Allocator interface {
	// Alloc returns a buffer of n bytes whose start address is a multiple
	// of align. align must be a power of two; zero means DefaultAlign.
	Alloc(n, align int) (*Buffer, error)
	// Free releases a buffer obtained from Alloc.
	Free(b *Buffer)
	// Close releases the allocator. All buffers must have been freed.
	Close() error
}

// heap is the default allocator. It carves aligned slices out of ordinary
// Go allocations; the software VEU engine operates on virtual addresses, so
// no physical mapping is needed.
type heap struct {
	mu   sync.Mutex
	live int
}

// New returns the default heap-backed allocator.
func New() Allocator {
	return &heap{}
}

func (a *heap) Alloc(n, align int) (*Buffer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dmabuf: invalid allocation size %d", n)
	}
	if align == 0 {
		align = DefaultAlign
	}
	if align < 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("dmabuf: alignment %d is not a power of two", align)
	}

	raw := make([]byte, n+align-1)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) & uintptr(align-1)); rem != 0 {
		off = align - rem
	}

	a.mu.Lock()
	a.live++
	a.mu.Unlock()

	return &Buffer{data: raw[off : off+n : off+n], raw: raw}, nil
}

func (a *heap) Free(b *Buffer) {
	if b == nil || b.raw == nil {
		return
	}
	b.data = nil
	b.raw = nil

	a.mu.Lock()
	a.live--
	a.mu.Unlock()
}

func (a *heap) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.live != 0 {
		return fmt.Errorf("dmabuf: %d buffers still allocated at close", a.live)
	}
	return nil
}
