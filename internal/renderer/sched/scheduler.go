// Package sched runs the render thread: a single-goroutine event
// loop driving the render, draw, and cursor-blink timers plus a
// cross-thread command mailbox.
package sched

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dshills/glint/internal/logging"
	"github.com/dshills/glint/internal/renderer/backend"
	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/frame"
	"github.com/dshills/glint/internal/renderer/grid"
	"github.com/dshills/glint/internal/renderer/shape"
)

// DefaultMailboxSize bounds the command mailbox.
const DefaultMailboxSize = 64

// Options configures a scheduler.
type Options struct {
	// RenderInterval is the delay between a wakeup and the frame
	// rebuild it triggers; multiple wakeups inside the window
	// coalesce into one rebuild.
	RenderInterval time.Duration

	// DrawInterval drives animation redraws (roughly 30fps).
	DrawInterval time.Duration

	// BlinkInterval is the cursor blink half-period.
	BlinkInterval time.Duration

	// MailboxSize bounds the command mailbox.
	MailboxSize int

	// CacheFactor scales row-cache capacity relative to the visible
	// row count on resize.
	CacheFactor int

	// CellSize is the initial cell pixel size.
	CellSize core.CellSize

	// FontThickening is the initial glyph thickening state, tracked
	// so config changes can detect a flip.
	FontThickening bool

	// LockThread pins the event loop goroutine to its OS thread.
	// Required when the backend binds a GPU context to the render
	// thread; harmless otherwise.
	LockThread bool
}

// DefaultOptions returns the standard timer intervals.
func DefaultOptions() Options {
	return Options{
		RenderInterval: 10 * time.Millisecond,
		DrawInterval:   33 * time.Millisecond,
		BlinkInterval:  600 * time.Millisecond,
		MailboxSize:    DefaultMailboxSize,
		CacheFactor:    4,
		CellSize:       core.CellSize{Width: 8, Height: 16},
		LockThread:     true,
	}
}

// Scheduler is the render thread event loop. One scheduler serves
// one rendered surface; all of its state except the mailbox is owned
// by the loop goroutine.
type Scheduler struct {
	opts    Options
	source  grid.Source
	asm     *frame.Assembler
	shaper  shape.Shaper
	backend backend.Backend
	log     *logging.Logger

	mailbox chan Command
	wakeup  chan struct{}

	render *countdown
	draw   *countdown
	blink  *countdown

	// Loop-owned state.
	cursorVisible bool
	focused       bool
	preedit       rune
	cellSize      core.CellSize
	thickening    bool
	padding       core.Padding
	screenSize    core.ScreenSize

	// pendingViewport defers the GPU viewport update to the next
	// draw; GPU state changes happen at a controlled point on the
	// GPU-owning thread, never on command receipt.
	pendingViewport bool

	// Last fully assembled frame, swapped in atomically after
	// assembly completes. The draw timer redraws it without touching
	// terminal state.
	lastBG    []core.Record
	lastFG    []core.Record
	haveFrame bool

	// Atlas upload tracking: the texture is re-uploaded only when the
	// atlas gained glyphs or was cleared since the last upload.
	atlasGen uint64
	atlasLen int

	// stopping is set by an explicit Stop command.
	stopping bool

	running atomic.Bool
	done    chan struct{}
}

// New creates a scheduler. logger may be nil.
func New(source grid.Source, asm *frame.Assembler, shaper shape.Shaper, bk backend.Backend, opts Options, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Null
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = DefaultMailboxSize
	}
	if opts.CacheFactor < 1 {
		opts.CacheFactor = 4
	}
	return &Scheduler{
		opts:          opts,
		source:        source,
		asm:           asm,
		shaper:        shaper,
		backend:       bk,
		log:           logger.WithComponent("sched"),
		mailbox:       make(chan Command, opts.MailboxSize),
		wakeup:        make(chan struct{}, 1),
		render:        newCountdown(),
		draw:          newCountdown(),
		blink:         newCountdown(),
		cursorVisible: true,
		focused:       true,
		cellSize:      opts.CellSize,
		thickening:    opts.FontThickening,
		done:          make(chan struct{}),
	}
}

// Post enqueues a command and wakes the loop. It never blocks: a
// full mailbox returns ErrMailboxFull and the command is dropped.
func (s *Scheduler) Post(cmd Command) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	select {
	case s.mailbox <- cmd:
		s.Wake()
		return nil
	default:
		return ErrMailboxFull
	}
}

// Wake requests a frame refresh. Multiple wakeups before the render
// timer fires coalesce into one rebuild.
func (s *Scheduler) Wake() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// SetPreedit sets the pending composing codepoint (0 clears it) and
// requests a refresh. Safe from any goroutine via the mailbox.
func (s *Scheduler) SetPreedit(r rune) error {
	return s.Post(preeditCommand{r: r})
}

// preeditCommand is internal: preedit updates ride the mailbox like
// any other cross-thread command.
type preeditCommand struct{ r rune }

func (preeditCommand) isCommand() {}

// Done returns a channel closed when the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Run executes the event loop until the context is cancelled. It
// blocks; callers usually run it on its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	if s.opts.LockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	s.running.Store(true)
	defer func() {
		s.running.Store(false)
		s.render.Cancel()
		s.draw.Cancel()
		s.blink.Cancel()
		close(s.done)
	}()

	// Cursor blink is the only timer armed at thread start.
	s.blink.Arm(s.opts.BlinkInterval)
	if s.backend.NeedsAnimation() {
		s.draw.Arm(s.opts.DrawInterval)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.wakeup:
			s.drainMailbox()
			if s.stopping {
				return
			}
			if !s.render.Armed() {
				s.render.Arm(s.opts.RenderInterval)
			}

		case <-s.render.C():
			s.render.Fired()
			if err := s.renderFrame(); err != nil {
				// A failed frame leaves the previous one on screen;
				// the loop keeps running.
				s.log.Error("render failed: %v", err)
			}

		case <-s.draw.C():
			s.draw.Fired()
			if s.haveFrame {
				s.applyPendingViewport()
				if err := s.backend.DrawFrame(s.lastBG, s.lastFG); err != nil {
					s.log.Error("draw failed: %v", err)
				}
			}
			// Rearm regardless of errors: a single failed draw must
			// not stop the animation loop.
			if s.backend.NeedsAnimation() {
				s.draw.Arm(s.opts.DrawInterval)
			}

		case <-s.blink.C():
			s.blink.Fired()
			s.cursorVisible = !s.cursorVisible
			s.blink.Arm(s.opts.BlinkInterval)
			s.Wake()
		}
	}
}

// drainMailbox applies queued commands on the loop goroutine. Errors
// are logged per command; a bad command never stops the drain.
func (s *Scheduler) drainMailbox() {
	for {
		select {
		case cmd := <-s.mailbox:
			if err := s.apply(cmd); err != nil {
				s.log.Error("command %T failed: %v", cmd, err)
			}
		default:
			return
		}
	}
}

// apply handles one command.
func (s *Scheduler) apply(cmd Command) error {
	switch c := cmd.(type) {
	case Focus:
		s.applyFocus(c)
	case Resize:
		s.applyResize(c)
	case FontSize:
		s.applyFontSize(c)
	case ColorChange:
		s.applyColorChange(c)
	case ConfigChange:
		s.applyConfigChange(c)
	case preeditCommand:
		s.preedit = c.r
	case Stop:
		s.stopping = true
	}
	return nil
}

// applyFocus handles focus changes. Losing focus stops animation and
// cancels the blink countdown outright, so a stale expiry cannot be
// mistaken for a fresh blink after refocus. Gaining focus forces the
// cursor visible and restarts blink, plus the draw timer if the
// backend is animating.
func (s *Scheduler) applyFocus(c Focus) {
	s.focused = c.Focused
	if !c.Focused {
		s.draw.Cancel()
		s.blink.Cancel()
		s.cursorVisible = true
		return
	}
	s.cursorVisible = true
	s.blink.Arm(s.opts.BlinkInterval)
	if s.backend.NeedsAnimation() {
		s.draw.Arm(s.opts.DrawInterval)
	}
}

// applyResize recomputes the grid, resizes the row cache (never
// below its floor), and defers the GPU viewport update to the next
// draw call.
func (s *Scheduler) applyResize(c Resize) {
	s.screenSize = c.Size
	s.padding = c.Padding

	size := core.GridFor(c.Size, s.cellSize, c.Padding)
	if r, ok := s.source.(grid.Resizer); ok {
		r.Resize(grid.GridSizeHint{Cols: size.Cols, Rows: size.Rows})
	}
	evicted := s.asm.Cache().Resize(size.Rows * s.opts.CacheFactor)
	if evicted > 0 {
		s.log.Debug("cache resize evicted %d rows", evicted)
	}
	s.pendingViewport = true
}

// applyFontSize invalidates everything glyph geometry touches: the
// row cache wholesale, the atlas, and the cell pixel dimensions. The
// GPU uniform update is deferred like a viewport change.
func (s *Scheduler) applyFontSize(c FontSize) {
	s.cellSize = c.CellSize
	s.asm.Cache().InvalidateAll()
	if cs, ok := s.shaper.(interface{ SetCellSize(w, h int) }); ok {
		cs.SetCellSize(c.CellSize.Width, c.CellSize.Height)
	}
	if ac, ok := s.shaper.(shape.AtlasClearer); ok {
		ac.ClearAtlas()
	}
	s.pendingViewport = true
}

// applyColorChange swaps the theme. Cached rows have colors baked
// into their records, so the cache is cleared.
func (s *Scheduler) applyColorChange(c ColorChange) {
	if c.Theme == nil {
		return
	}
	s.asm.Builder().SetTheme(c.Theme)
	s.asm.Cache().InvalidateAll()
}

// applyConfigChange rebuilds the shaping engine (feature flags may
// have changed), clears the atlas when thickening flipped, updates
// intervals, and re-evaluates whether the animation timer should
// run.
func (s *Scheduler) applyConfigChange(c ConfigChange) {
	cfg := c.Config

	if cfg.FontThickening != s.thickening {
		s.thickening = cfg.FontThickening
		if ac, ok := s.shaper.(shape.AtlasClearer); ok {
			ac.ClearAtlas()
		}
		s.asm.Cache().InvalidateAll()
	}

	if fc, ok := s.shaper.(shape.FeatureConfigurer); ok {
		fc.SetFeatures(cfg.ShaperFeatures)
	}

	if d := cfg.RenderInterval.Std(); d > 0 {
		s.opts.RenderInterval = d
	}
	if d := cfg.DrawInterval.Std(); d > 0 {
		s.opts.DrawInterval = d
	}
	if d := cfg.CursorBlinkInterval.Std(); d > 0 {
		s.opts.BlinkInterval = d
	}
	if cfg.CacheFactor >= 1 {
		s.opts.CacheFactor = cfg.CacheFactor
	}

	th := s.asm.Builder().Theme()
	if th.BackgroundOpacity != cfg.BackgroundOpacity {
		th.BackgroundOpacity = cfg.BackgroundOpacity
		s.asm.Cache().InvalidateAll()
	}

	if s.backend.NeedsAnimation() {
		if !s.draw.Armed() {
			s.draw.Arm(s.opts.DrawInterval)
		}
	} else {
		s.draw.Cancel()
	}
}

// renderFrame takes a snapshot under the terminal lock, assembles
// outside it, atomically swaps in the new frame, and draws.
func (s *Scheduler) renderFrame() error {
	snap, err := s.source.Snapshot()
	if err != nil {
		return err
	}

	drawCursor := s.cursorVisible && snap.Cursor.Visible
	bg, fg, err := s.asm.Assemble(snap, drawCursor, s.preedit)
	if err != nil {
		// Skip the frame; the previous frame stays intact.
		return err
	}

	// Swap only after full assembly so a failed frame can never be
	// observed half-built.
	s.lastBG = append(s.lastBG[:0], bg...)
	s.lastFG = append(s.lastFG[:0], fg...)
	s.haveFrame = true

	s.syncAtlas()
	s.applyPendingViewport()
	return s.backend.DrawFrame(s.lastBG, s.lastFG)
}

// syncAtlas re-uploads the glyph atlas when shaping changed it since
// the last upload. Upload failures keep the previous texture; the
// frame still draws.
func (s *Scheduler) syncAtlas() {
	a, ok := s.shaper.(interface{ Atlas() *shape.Atlas })
	if !ok {
		return
	}
	atlas := a.Atlas()
	gen, n := atlas.Generation(), atlas.Len()
	if gen == s.atlasGen && n == s.atlasLen {
		return
	}
	w, h := atlas.Size()
	if err := s.backend.UploadAtlas(atlas.Pixels(), w, h); err != nil {
		s.log.Warn("atlas upload failed: %v", err)
		return
	}
	s.atlasGen, s.atlasLen = gen, n
}

// applyPendingViewport flushes a deferred viewport update at the
// controlled pre-draw point.
func (s *Scheduler) applyPendingViewport() {
	if !s.pendingViewport {
		return
	}
	s.pendingViewport = false
	s.backend.SetViewport(s.screenSize, s.padding)
}
