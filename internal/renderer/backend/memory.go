package backend

import "github.com/dshills/glint/internal/renderer/core"

// Memory is an in-memory backend that records what it is asked to
// draw. It backs tests and headless use.
type Memory struct {
	caps Caps

	// LastBG and LastFG hold copies of the most recent frame.
	LastBG []core.Record
	LastFG []core.Record

	// Frames counts DrawFrame calls.
	Frames int

	// Viewport state from the last SetViewport call.
	Size    core.ScreenSize
	Padding core.Padding

	// AtlasUploads counts UploadAtlas calls.
	AtlasUploads int

	// Animating controls NeedsAnimation.
	Animating bool

	// FailDraw, when non-nil, is returned from DrawFrame.
	FailDraw error
}

// NewMemory creates a memory backend with the given capabilities.
func NewMemory(caps Caps) *Memory {
	return &Memory{caps: caps}
}

// Caps implements Backend.
func (m *Memory) Caps() Caps {
	return m.caps
}

// DrawFrame implements Backend by copying both passes.
func (m *Memory) DrawFrame(bg, fg []core.Record) error {
	if m.FailDraw != nil {
		return m.FailDraw
	}
	m.LastBG = append(m.LastBG[:0], bg...)
	m.LastFG = append(m.LastFG[:0], fg...)
	m.Frames++
	return nil
}

// SetViewport implements Backend.
func (m *Memory) SetViewport(size core.ScreenSize, pad core.Padding) {
	m.Size = size
	m.Padding = pad
}

// UploadAtlas implements Backend.
func (m *Memory) UploadAtlas(_ []byte, _, _ int) error {
	m.AtlasUploads++
	return nil
}

// NeedsAnimation implements Backend.
func (m *Memory) NeedsAnimation() bool {
	return m.Animating
}

var _ Backend = (*Memory)(nil)
