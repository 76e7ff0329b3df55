// Package main is the entry point for the glint renderer demo. It
// drives the render pipeline with a tcell software backend: terminal
// output written to the source comes back out as assembled frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/glint/internal/app"
	"github.com/dshills/glint/internal/renderer/backend"
	"github.com/dshills/glint/internal/renderer/core"
	"github.com/dshills/glint/internal/renderer/grid"
	"github.com/dshills/glint/internal/renderer/sched"
	"github.com/dshills/glint/internal/renderer/shape"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, replay := parseFlags()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating screen: %v\n", err)
		return 1
	}

	// The software backend maps one grid cell to one screen cell, so
	// the pixel-space math runs with unit cells.
	atlas := shape.NewAtlas(shape.DefaultAtlasSize, shape.DefaultAtlasSize)
	term := backend.NewTcell(screen, atlas)
	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing screen: %v\n", err)
		return 1
	}
	defer term.Shutdown()
	screen.EnableMouse()

	cols, rows := screen.Size()
	opts.Cols = cols
	opts.Rows = rows
	opts.CellSize = core.CellSize{Width: 1, Height: 1}
	opts.Backend = term

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Swap in the shaper's atlas so the backend resolves the same
	// rects the assembler emits.
	term.SetAtlas(application.Atlas())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	go func() {
		if err := application.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	if replay != "" {
		go replayFile(application, replay)
	} else {
		go greet(application)
	}

	pollEvents(ctx, cancel, application, screen)
	<-application.Done()
	return 0
}

// pollEvents translates tcell events into scheduler commands until
// the context is cancelled.
func pollEvents(ctx context.Context, cancel context.CancelFunc, application *app.Application, screen tcell.Screen) {
	go func() {
		<-ctx.Done()
		// Unblock PollEvent.
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	var selecting bool
	var anchor grid.Position

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			return

		case *tcell.EventResize:
			w, h := ev.Size()
			_ = application.Post(sched.Resize{
				Size: core.ScreenSize{Width: w, Height: h},
			})

		case *tcell.EventFocus:
			_ = application.Post(sched.Focus{Focused: ev.Focused})

		case *tcell.EventMouse:
			x, y := ev.Position()
			if ev.Buttons()&tcell.Button1 != 0 {
				pos := grid.Position{Row: y, Col: x}
				if !selecting {
					selecting = true
					anchor = pos
				}
				application.Source().SetSelection(grid.Selection{Start: anchor, End: pos})
				application.Wake()
			} else {
				selecting = false
			}

		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				cancel()
				return
			}
			// Typing drops the selection, like a terminal would.
			application.Source().ClearSelection()
			selecting = false
			echoKey(application, ev)
		}
	}
}

// echoKey feeds a key press back into the terminal source so typing
// is visible in the demo.
func echoKey(application *app.Application, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		_, _ = application.Write([]byte(string(ev.Rune())))
	case tcell.KeyEnter:
		_, _ = application.Write([]byte("\r\n"))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		_, _ = application.Write([]byte("\b \b"))
	case tcell.KeyTab:
		_, _ = application.Write([]byte("\t"))
	}
}

// waitWritable blocks until the render loop accepts input, or gives
// up after a second. Run starts on another goroutine, so the first
// writes can race it.
func waitWritable(application *app.Application) bool {
	for deadline := time.Now().Add(time.Second); time.Now().Before(deadline); {
		if _, err := application.Write(nil); err == nil {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// replayFile streams a file of captured terminal output into the
// source in small chunks, which exercises the wakeup coalescing.
func replayFile(application *app.Application, path string) {
	if !waitWritable(application) {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening %s: %v\n", path, err)
		return
	}
	defer f.Close()

	buf := make([]byte, 512)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = application.Write(buf[:n])
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", path, err)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// greet writes a small banner with a few attribute samples.
func greet(application *app.Application) {
	if !waitWritable(application) {
		return
	}
	_, _ = application.Write([]byte(
		"glint " + version + "\r\n" +
			"\x1b[1mbold\x1b[0m \x1b[2mfaint\x1b[0m \x1b[3mitalic\x1b[0m " +
			"\x1b[4munderline\x1b[0m \x1b[4:3m\x1b[58;2;255;80;80mcurly\x1b[0m " +
			"\x1b[7minverse\x1b[0m \x1b[9mstruck\x1b[0m\r\n" +
			"\x1b[31mred\x1b[0m \x1b[38;5;208morange\x1b[0m " +
			"\x1b[38;2;100;200;250mtruecolor\x1b[0m\r\n" +
			"type to echo, ctrl-c to quit\r\n"))
}

func parseFlags() (app.Options, string) {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "glint - terminal renderer core demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: glint [options] [replay-file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glint                       Interactive echo demo\n")
		fmt.Fprintf(os.Stderr, "  glint capture.ansi          Replay captured terminal output\n")
		fmt.Fprintf(os.Stderr, "  glint -c glint.toml         Use a configuration file\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("glint %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	replay := ""
	if args := flag.Args(); len(args) > 0 {
		replay = args[0]
	}

	return opts, replay
}
