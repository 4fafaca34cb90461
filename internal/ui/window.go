package ui

import (
	"context"
	"sync"
	"unsafe"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/rs/zerolog"

	"github.com/bnema/lumiere/assets"
	"github.com/bnema/lumiere/internal/logging"
)

// WindowOptions configures the player window.
type WindowOptions struct {
	Fullscreen bool
	Width      int
	Height     int
	Subtitles  bool
}

// Window is the player window: a video view with a subtitle overlay.
// It satisfies the playback render surface contract.
type Window struct {
	win      *gtk.ApplicationWindow
	picture  *gtk.Picture
	subtitle *gtk.Label

	opts      WindowOptions
	attached  bool
	readyOnce sync.Once

	logger zerolog.Logger
}

// NewWindow builds the player window from the embedded layout. Each widget
// lookup fails distinctly so a broken layout is diagnosable from the error
// alone.
func NewWindow(ctx context.Context, opts WindowOptions) (*Window, error) {
	log := logging.FromContext(ctx)

	w := &Window{
		opts:   opts,
		logger: log.With().Str("component", "window").Logger(),
	}

	builder := gtk.NewBuilderFromString(assets.PlayerUI)
	if builder == nil {
		return nil, ErrLayoutLoadFailed
	}

	winObj := builder.GetObject("player_window")
	if winObj == nil {
		return nil, ErrWidgetMissing("player_window")
	}
	win, ok := winObj.Cast().(*gtk.ApplicationWindow)
	if !ok {
		return nil, ErrWidgetMissing("player_window")
	}
	w.win = win

	picObj := builder.GetObject("video_view")
	if picObj == nil {
		return nil, ErrWidgetMissing("video_view")
	}
	picture, ok := picObj.Cast().(*gtk.Picture)
	if !ok {
		return nil, ErrWidgetMissing("video_view")
	}
	w.picture = picture

	subObj := builder.GetObject("subtitle_osd")
	if subObj == nil {
		return nil, ErrWidgetMissing("subtitle_osd")
	}
	subtitle, ok := subObj.Cast().(*gtk.Label)
	if !ok {
		return nil, ErrWidgetMissing("subtitle_osd")
	}
	w.subtitle = subtitle

	if opts.Width > 0 && opts.Height > 0 {
		w.win.SetDefaultSize(opts.Width, opts.Height)
	}

	w.logger.Debug().
		Bool("fullscreen", opts.Fullscreen).
		Bool("subtitles", opts.Subtitles).
		Msg("player window built")

	return w, nil
}

// ConnectRenderReady arranges for fn to run exactly once, after the video
// view is mapped and immediately before its first frame is drawn. Playback
// start belongs there: attaching the paintable to an unrealized view would
// drop the opening frames.
func (w *Window) ConnectRenderReady(fn func()) {
	w.picture.ConnectMap(func() {
		w.logger.Debug().Msg("video view mapped")
		w.picture.AddTickCallback(func(_ gtk.Widgetter, _ gdk.FrameClocker) bool {
			w.readyOnce.Do(func() {
				w.logger.Debug().Msg("render surface ready")
				fn()
			})
			return false
		})
	})
}

// Attach adopts the sink's paintable into the video view. The pointer is a
// GdkPaintable owned by the video sink; adopting it here adds our own
// reference, so sink teardown cannot yank the texture out from under GTK.
func (w *Window) Attach(paintable unsafe.Pointer) error {
	if paintable == nil {
		return ErrNilPaintable
	}
	obj := coreglib.Take(paintable)
	w.picture.SetObjectProperty("paintable", obj)
	w.attached = true
	w.logger.Debug().Msg("paintable attached to video view")
	return nil
}

// Detach drops the video view's paintable. Must run before the window is
// torn down so GTK never draws from a sink that no longer exists.
func (w *Window) Detach() {
	if !w.attached {
		return
	}
	w.picture.SetPaintable(nil)
	w.attached = false
	w.logger.Debug().Msg("paintable detached from video view")
}

// SubtitleSink returns the overlay label as a subtitle text sink, or nil
// when subtitles are disabled.
func (w *Window) SubtitleSink() *LabelSink {
	if !w.opts.Subtitles {
		return nil
	}
	return NewLabelSink(w.subtitle)
}

// SetSubtitleVisible toggles the subtitle overlay. Safe from any goroutine.
func (w *Window) SetSubtitleVisible(visible bool) {
	glib.IdleAdd(func() bool {
		w.subtitle.SetVisible(visible)
		return false
	})
}

// SetTitle updates the window title.
// The title is capped at 255 characters for display.
func (w *Window) SetTitle(title string) {
	const maxTitleLen = 255
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}
	w.win.SetTitle(title)
}

// Show presents the window, fullscreen when requested.
func (w *Window) Show() {
	if w.opts.Fullscreen {
		w.win.Fullscreen()
	}
	w.win.Present()
	w.logger.Info().Bool("fullscreen", w.opts.Fullscreen).Msg("window presented")
}

// Close closes the window.
func (w *Window) Close() {
	w.win.Close()
}

// WindowError represents a window construction error.
type WindowError struct {
	Message string
}

func (e WindowError) Error() string {
	return e.Message
}

// Error constants.
var (
	ErrLayoutLoadFailed = WindowError{Message: "failed to load player layout"}
	ErrNilPaintable     = WindowError{Message: "video sink exposed no paintable"}
)

// ErrWidgetMissing creates an error for a widget absent from the layout.
func ErrWidgetMissing(name string) error {
	return WindowError{Message: "player layout: missing widget: " + name}
}
