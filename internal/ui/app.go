// Package ui wraps the GTK application shell that hosts the video surface.
package ui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/bnema/lumiere/internal/logging"
)

// AppID is the application identifier for GTK.
const AppID = "com.github.bnema.lumiere"

// App wraps the GTK Application and manages the player lifecycle.
type App struct {
	ctx    context.Context
	gtkApp *gtk.Application

	quitOnce sync.Once
	failed   atomic.Bool

	mu      sync.Mutex
	cleanup []func()
}

// New initializes GTK and creates the application shell. Widgets may be
// built as soon as this returns, before the main loop runs, so setup
// failures surface on stderr with a non-zero exit instead of a dead window.
func New(ctx context.Context) (*App, error) {
	if err := gtk.InitCheck(); err != nil {
		return nil, fmt.Errorf("ui: initialize GTK (is a display available?): %w", err)
	}

	return &App{
		ctx:    logging.WithComponent(ctx, "ui"),
		gtkApp: gtk.NewApplication(AppID, applicationFlags()),
	}, nil
}

// applicationFlags returns the GApplication flags for the player. Non-unique
// keeps every invocation as its own process, so two videos can play side by
// side instead of the second launch activating the first.
func applicationFlags() gio.ApplicationFlags {
	return gio.ApplicationNonUnique
}

// Run starts the GTK main loop and blocks until quit. onActivate runs when
// the application activates, before the first frame.
func (a *App) Run(onActivate func()) int {
	log := logging.FromContext(a.ctx)

	a.gtkApp.ConnectActivate(func() {
		log.Debug().Msg("application activated")
		if onActivate != nil {
			onActivate()
		}
	})

	a.gtkApp.ConnectShutdown(func() {
		log.Debug().Msg("application shutting down")
		a.runCleanup()
	})

	log.Info().Msg("starting main loop")
	return a.gtkApp.Run(nil)
}

// OnCleanup registers fn to run at shutdown. Functions run in reverse
// registration order, before the windows are torn down.
func (a *App) OnCleanup(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cleanup = append(a.cleanup, fn)
}

func (a *App) runCleanup() {
	a.mu.Lock()
	fns := a.cleanup
	a.cleanup = nil
	a.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// AddWindow binds a window to the application so quitting closes it.
func (a *App) AddWindow(w *Window) {
	a.gtkApp.AddWindow(&w.win.Window)
}

// Quit exits the main loop. Safe to call from any goroutine; the actual
// quit hops onto the GTK main context. Repeated calls are no-ops.
func (a *App) Quit() {
	a.quitOnce.Do(func() {
		glib.IdleAdd(func() bool {
			a.gtkApp.Quit()
			return false
		})
	})
}

// QuitWithFailure exits the main loop and marks the run as failed so the
// process can exit non-zero.
func (a *App) QuitWithFailure() {
	a.failed.Store(true)
	a.Quit()
}

// Failed reports whether QuitWithFailure was called.
func (a *App) Failed() bool {
	return a.failed.Load()
}
