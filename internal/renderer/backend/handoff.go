package backend

import (
	"sync"

	"github.com/dshills/glint/internal/renderer/core"
)

// Handoff wraps a single-threaded-draw backend. The render thread
// calls DrawFrame as usual; the handoff copies the frame, posts the
// actual draw to the designated thread, and blocks new frames until
// the posted draw completes, so the render thread never builds a
// second frame's data while the first is still being drawn.
type Handoff struct {
	inner  Backend
	poster DrawPoster

	// drawMu serializes frame handoffs.
	drawMu sync.Mutex

	// Scratch copies handed to the draw thread.
	bg []core.Record
	fg []core.Record
}

// NewHandoff wraps a backend whose draws must run on the poster's
// thread.
func NewHandoff(inner Backend, poster DrawPoster) *Handoff {
	return &Handoff{inner: inner, poster: poster}
}

// Caps reports the wrapped backend's capabilities.
func (h *Handoff) Caps() Caps {
	return h.inner.Caps()
}

// DrawFrame copies the frame and posts the draw. It returns once the
// designated thread has finished drawing.
func (h *Handoff) DrawFrame(bg, fg []core.Record) error {
	h.drawMu.Lock()
	defer h.drawMu.Unlock()

	h.bg = append(h.bg[:0], bg...)
	h.fg = append(h.fg[:0], fg...)

	done := make(chan error, 1)
	h.poster.PostDraw(func() {
		done <- h.inner.DrawFrame(h.bg, h.fg)
	})
	return <-done
}

// SetViewport posts the viewport update to the draw thread.
func (h *Handoff) SetViewport(size core.ScreenSize, pad core.Padding) {
	done := make(chan struct{})
	h.poster.PostDraw(func() {
		h.inner.SetViewport(size, pad)
		close(done)
	})
	<-done
}

// UploadAtlas posts the atlas upload to the draw thread.
func (h *Handoff) UploadAtlas(pixels []byte, width, height int) error {
	done := make(chan error, 1)
	h.poster.PostDraw(func() {
		done <- h.inner.UploadAtlas(pixels, width, height)
	})
	return <-done
}

// NeedsAnimation reports the wrapped backend's animation state.
func (h *Handoff) NeedsAnimation() bool {
	return h.inner.NeedsAnimation()
}

var _ Backend = (*Handoff)(nil)
