// Package app wires the renderer pipeline together and manages its
// lifecycle: configuration, logging, the terminal source, the glyph
// shaper, the frame assembler, the scheduler, and the backend.
package app

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/glint/internal/config"
	"github.com/dshills/glint/internal/logging"
	"github.com/dshills/glint/internal/renderer/backend"
	"github.com/dshills/glint/internal/renderer/cellbuild"
	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/frame"
	"github.com/dshills/glint/internal/renderer/grid"
	"github.com/dshills/glint/internal/renderer/rowcache"
	"github.com/dshills/glint/internal/renderer/sched"
	"github.com/dshills/glint/internal/renderer/shape"
	"github.com/dshills/glint/internal/renderer/theme"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the TOML configuration file. Empty
	// uses defaults.
	ConfigPath string

	// Cols and Rows are the initial terminal grid dimensions.
	Cols, Rows int

	// CellSize is the cell pixel size. Zero values fall back to a
	// nominal monospace cell.
	CellSize core.CellSize

	// Backend is the graphics backend. Required.
	Backend backend.Backend

	// Poster is the designated draw thread poster, required when the
	// backend reports SingleThreadedDraw.
	Poster backend.DrawPoster

	// Logger overrides the default logger. Optional.
	Logger *logging.Logger
}

// Application owns one rendered surface and its pipeline.
type Application struct {
	id  uuid.UUID
	cfg config.Config
	log *logging.Logger

	source    *grid.VTSource
	shaper    *shape.MonoShaper
	cache     *rowcache.Cache
	builder   *cellbuild.Builder
	assembler *frame.Assembler
	scheduler *sched.Scheduler
	backend   backend.Backend
	watcher   *config.Watcher

	running atomic.Bool
	done    chan struct{}

	opts Options
}

// New creates an application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		id:   uuid.New(),
		opts: opts,
		done: make(chan struct{}),
	}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Configuration.
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		// A broken config file falls back to defaults; the load error
		// is reported once the logger exists.
		app.cfg = config.Default()
	} else {
		app.cfg = cfg
	}

	// 2. Logging.
	if app.opts.Logger != nil {
		app.log = app.opts.Logger
	} else {
		logCfg := logging.DefaultConfig()
		logCfg.Level = logging.ParseLevel(app.cfg.LogLevel)
		app.log = logging.New(logCfg)
	}
	app.log = app.log.WithField("surface", app.id.String()[:8])
	if err != nil {
		app.log.Warn("config load failed, using defaults: %v", err)
	}

	// 3. Theme.
	th := theme.Default()
	if app.cfg.ThemeFile != "" {
		loaded, err := theme.Load(app.cfg.ThemeFile)
		if err != nil {
			app.log.Warn("theme load failed, using built-in theme: %v", err)
		} else {
			th = loaded
		}
	}
	th.BackgroundOpacity = app.cfg.BackgroundOpacity

	// 4. Shaper and atlas.
	cell := app.opts.CellSize
	if cell.Width <= 0 || cell.Height <= 0 {
		cell = core.CellSize{Width: 8, Height: 16}
	}
	app.shaper = shape.NewMonoShaper(shape.NewAtlas(shape.DefaultAtlasSize, shape.DefaultAtlasSize), cell.Width, cell.Height)
	app.shaper.SetFeatures(app.cfg.ShaperFeatures)

	// 5. Row cache, sized from the visible row count.
	rows := app.opts.Rows
	if rows <= 0 {
		rows = 24
	}
	cols := app.opts.Cols
	if cols <= 0 {
		cols = 80
	}
	app.cache = rowcache.New(rows * app.cfg.CacheFactor)

	// 6. Cell builder and frame assembler.
	app.builder = cellbuild.New(th)
	app.assembler = frame.New(app.cache, app.shaper, app.builder, app.log)

	// 7. Terminal source.
	app.source = grid.NewVTSource(cols, rows)

	// 8. Backend, wrapped for single-threaded draw when required.
	if app.opts.Backend == nil {
		return &InitError{Component: "backend", Err: backend.ErrNotInitialized}
	}
	app.backend = app.opts.Backend
	if app.backend.Caps().SingleThreadedDraw {
		if app.opts.Poster == nil {
			return &InitError{Component: "backend", Err: errNoPoster}
		}
		app.backend = backend.NewHandoff(app.backend, app.opts.Poster)
	}

	// 9. Scheduler.
	schedOpts := sched.DefaultOptions()
	schedOpts.RenderInterval = app.cfg.RenderInterval.Std()
	schedOpts.DrawInterval = app.cfg.DrawInterval.Std()
	schedOpts.BlinkInterval = app.cfg.CursorBlinkInterval.Std()
	schedOpts.CacheFactor = app.cfg.CacheFactor
	schedOpts.CellSize = cell
	schedOpts.FontThickening = app.cfg.FontThickening
	app.scheduler = sched.New(app.source, app.assembler, app.shaper, app.backend, schedOpts, app.log)

	// 10. Config watcher, only when a config path was given.
	if app.opts.ConfigPath != "" {
		app.watcher = config.NewWatcher(app.opts.ConfigPath, app.onConfigReload, app.log)
	}

	return nil
}

// onConfigReload forwards a freshly loaded config to the scheduler.
func (app *Application) onConfigReload(cfg config.Config) {
	app.log.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if err := app.scheduler.Post(sched.ConfigChange{Config: cfg}); err != nil {
		app.log.Warn("config change dropped: %v", err)
	}
}

// Run starts the scheduler and blocks until the context is cancelled
// and the render loop has exited.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer close(app.done)

	if app.watcher != nil {
		if err := app.watcher.Start(ctx); err != nil {
			app.log.Warn("config watcher disabled: %v", err)
			app.watcher = nil
		}
	}

	app.log.Info("render loop starting (%dx%d)", app.opts.Cols, app.opts.Rows)
	app.scheduler.Run(ctx)

	if app.watcher != nil {
		app.watcher.Wait()
	}
	app.log.Info("render loop stopped")
	return nil
}

// Done returns a channel closed when Run has returned.
func (app *Application) Done() <-chan struct{} {
	return app.done
}

// Write feeds terminal output to the source and wakes the renderer.
func (app *Application) Write(p []byte) (int, error) {
	if !app.running.Load() {
		return 0, ErrNotRunning
	}
	n, err := app.source.Write(p)
	app.scheduler.Wake()
	return n, err
}

// Post forwards a command to the render thread.
func (app *Application) Post(cmd sched.Command) error {
	return app.scheduler.Post(cmd)
}

// Wake requests a frame refresh.
func (app *Application) Wake() {
	app.scheduler.Wake()
}

// Scheduler exposes the scheduler (tests, embedding hosts).
func (app *Application) Scheduler() *sched.Scheduler {
	return app.scheduler
}

// Atlas exposes the shaper's glyph atlas (backend upload, reverse
// lookup in software backends).
func (app *Application) Atlas() *shape.Atlas {
	return app.shaper.Atlas()
}

// Source exposes the terminal source.
func (app *Application) Source() *grid.VTSource {
	return app.source
}

// Config returns the active configuration.
func (app *Application) Config() config.Config {
	return app.cfg
}
