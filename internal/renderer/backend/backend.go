// Package backend provides the graphics backend abstraction for the
// renderer. A backend consumes the two ordered record sequences of an
// assembled frame and issues the actual draw calls; everything above
// it is graphics-API agnostic.
package backend

import (
	"errors"

	"github.com/dshills/glint/internal/renderer/core"
)

// Sentinel errors for backends.
var (
	// ErrContextLost is returned when the GPU context is gone and the
	// frame should be retried after the backend recovers.
	ErrContextLost = errors.New("graphics context lost")

	// ErrNotInitialized is returned when drawing before Init.
	ErrNotInitialized = errors.New("backend not initialized")
)

// Caps describes backend capabilities, resolved once at startup.
type Caps struct {
	// SingleThreadedDraw is true when draw calls must be issued by a
	// designated thread (for example the UI thread) rather than the
	// render thread. The scheduler then posts assembled frames to a
	// DrawPoster instead of drawing directly.
	SingleThreadedDraw bool
}

// Backend issues draw calls for assembled frames.
//
// DrawFrame draws the background pass before the foreground pass;
// text must appear above its own cell background. Both slices are
// only valid for the duration of the call.
//
// SetViewport and UploadAtlas must be called only from the thread
// that owns the graphics context.
type Backend interface {
	// Caps returns the backend capability set.
	Caps() Caps

	// DrawFrame draws one assembled frame.
	DrawFrame(bg, fg []core.Record) error

	// SetViewport updates the surface size and padding. Called at a
	// controlled point before the next draw, never mid-frame.
	SetViewport(size core.ScreenSize, pad core.Padding)

	// UploadAtlas replaces the glyph atlas texture.
	UploadAtlas(pixels []byte, width, height int) error

	// NeedsAnimation reports whether the backend has ongoing
	// animation work (custom shader effects) that wants a steady
	// draw timer even without terminal updates.
	NeedsAnimation() bool
}

// DrawPoster posts a closure to the designated draw thread. Used in
// single-threaded-draw mode.
type DrawPoster interface {
	PostDraw(draw func())
}

// DrawPosterFunc adapts a function to the DrawPoster interface.
type DrawPosterFunc func(draw func())

// PostDraw implements DrawPoster.
func (f DrawPosterFunc) PostDraw(draw func()) {
	f(draw)
}
