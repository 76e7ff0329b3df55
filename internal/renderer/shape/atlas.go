package shape

import (
	"sync"

	"github.com/dshills/glint/internal/renderer/core"
)

// Atlas is a shelf-packed glyph atlas. It tracks which sub-rectangle
// of the shared texture holds each rendered codepoint, so repeated
// shaping of the same rune reuses its slot instead of re-rendering.
//
// The atlas stores only geometry and a grayscale pixel buffer; actual
// rasterization quality is the shaper's concern.
type Atlas struct {
	mu sync.Mutex

	width  int
	height int

	// Shelf packing state.
	shelfX int
	shelfY int
	shelfH int

	// slots maps a codepoint to its reserved rect.
	slots map[rune]core.GlyphRect

	// byRect reverse-maps rects to runes for software backends that
	// need the original codepoint back.
	byRect map[core.GlyphRect]rune

	// pixels is the grayscale backing store uploaded to the GPU.
	pixels []byte

	// generation increments on every clear so stale rects can be
	// detected by holders.
	generation uint64
}

// DefaultAtlasSize is the default texture edge length in pixels.
const DefaultAtlasSize = 1024

// NewAtlas creates an atlas with the given texture dimensions.
func NewAtlas(width, height int) *Atlas {
	return &Atlas{
		width:  width,
		height: height,
		slots:  make(map[rune]core.GlyphRect),
		byRect: make(map[core.GlyphRect]rune),
		pixels: make([]byte, width*height),
	}
}

// Size returns the atlas texture dimensions.
func (a *Atlas) Size() (int, int) {
	return a.width, a.height
}

// Pixels returns the grayscale backing store for upload.
func (a *Atlas) Pixels() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pixels
}

// Generation returns the current clear generation.
func (a *Atlas) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// Reserve returns the slot for the given codepoint, allocating one of
// w by h pixels on first use. The second return is true when the slot
// already existed.
func (a *Atlas) Reserve(r rune, w, h int) (core.GlyphRect, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if rect, ok := a.slots[r]; ok {
		return rect, true, nil
	}

	if w <= 0 || h <= 0 || w > a.width || h > a.height {
		return core.GlyphRect{}, false, ErrNoGlyph
	}

	// Advance to the next shelf if this glyph does not fit.
	if a.shelfX+w > a.width {
		a.shelfY += a.shelfH
		a.shelfX = 0
		a.shelfH = 0
	}
	if a.shelfY+h > a.height {
		return core.GlyphRect{}, false, ErrAtlasFull
	}

	rect := core.GlyphRect{
		X: uint16(a.shelfX),
		Y: uint16(a.shelfY),
		W: uint16(w),
		H: uint16(h),
	}
	a.shelfX += w
	if h > a.shelfH {
		a.shelfH = h
	}

	a.slots[r] = rect
	a.byRect[rect] = r
	return rect, false, nil
}

// Lookup reverse-maps an atlas rect to the codepoint it holds. Used
// by software backends that need runes rather than texture samples.
func (a *Atlas) Lookup(rect core.GlyphRect) (rune, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.byRect[rect]
	return r, ok
}

// Clear releases every slot and bumps the generation. Used when glyph
// geometry goes stale (font size or thickening change).
func (a *Atlas) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.shelfX = 0
	a.shelfY = 0
	a.shelfH = 0
	a.slots = make(map[rune]core.GlyphRect)
	a.byRect = make(map[core.GlyphRect]rune)
	for i := range a.pixels {
		a.pixels[i] = 0
	}
	a.generation++
}

// Len returns the number of reserved slots.
func (a *Atlas) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots)
}
