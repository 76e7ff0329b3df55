package sched

import (
	"github.com/dshills/glint/internal/config"
	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/theme"
)

// Command is a cross-thread scheduler command. Commands are enqueued
// through the mailbox by any goroutine but are only ever applied on
// the scheduler's own goroutine, after a wakeup triggers a drain.
// Payload-carrying commands transfer ownership of their payload to
// the scheduler.
type Command interface {
	isCommand()
}

// Focus reports a window focus change.
type Focus struct {
	Focused bool
}

// Resize reports a surface size or padding change.
type Resize struct {
	Size    core.ScreenSize
	Padding core.Padding
}

// FontSize reports a font size change. Glyph geometry is stale after
// this: the row cache and atlas are invalidated wholesale.
type FontSize struct {
	CellSize core.CellSize
}

// ColorChange replaces the active theme. The scheduler takes
// ownership of the theme.
type ColorChange struct {
	Theme *theme.Theme
}

// ConfigChange applies a new configuration. The scheduler takes
// ownership of the config value.
type ConfigChange struct {
	Config config.Config
}

// Stop asks the loop to exit after draining the mailbox. Context
// cancellation also stops the loop; Stop exists for hosts that want
// queued commands applied before shutdown.
type Stop struct{}

func (Focus) isCommand()        {}
func (Resize) isCommand()       {}
func (FontSize) isCommand()     {}
func (ColorChange) isCommand()  {}
func (ConfigChange) isCommand() {}
func (Stop) isCommand()         {}
