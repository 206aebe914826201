package events

import "github.com/veukit/veuctl/internal/input"

// Event type constants for kelindar/event.
const (
	TypeKeyPressed uint32 = iota + 1
	TypeSourceChanged
	TypeFrameProcessed
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// KeyPressedEvent is published by keyboard backends for every decoded key.
type KeyPressedEvent struct {
	Key input.Key
}

// Type returns the event type identifier for KeyPressedEvent.
func (e KeyPressedEvent) Type() uint32 { return TypeKeyPressed }

// SourceChangedEvent is published when a watched input file changes on
// disk. The viewer treats it like the reload key.
type SourceChangedEvent struct {
	Path string
}

// Type returns the event type identifier for SourceChangedEvent.
func (e SourceChangedEvent) Type() uint32 { return TypeSourceChanged }

// FrameProcessedEvent is published by the converter after each frame.
type FrameProcessedEvent struct {
	Frame int
	Bytes int
}

// Type returns the event type identifier for FrameProcessedEvent.
func (e FrameProcessedEvent) Type() uint32 { return TypeFrameProcessed }
