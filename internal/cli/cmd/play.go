package cmd

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/lumiere/internal/config"
	"github.com/bnema/lumiere/internal/logging"
	"github.com/bnema/lumiere/internal/media"
	"github.com/bnema/lumiere/internal/playback"
	"github.com/bnema/lumiere/internal/signalbridge"
	"github.com/bnema/lumiere/internal/ui"
)

const historyRecordTimeout = 5 * time.Second

// runPlay drives the startup sequence: bring up GStreamer, build the UI
// shell, resolve the input to a playback URI, verify the video sink before
// any window exists, prepare the pipeline, and defer the actual start until
// the video view is about to draw its first frame.
func runPlay(cmd *cobra.Command, args []string) error {
	// Flags are valid from here on; later failures are runtime errors and
	// re-printing usage for them would just bury the message.
	cmd.SilenceUsage = true

	cfg := app.Config
	ctx := app.Ctx()
	log := logging.FromContext(ctx)

	// An explicit flag wins over the config file in either direction.
	fullscreen := cfg.Window.Fullscreen
	if cmd.Flags().Changed("fullscreen") {
		fullscreen = fullscreenFlag
	}
	subtitles := cfg.Playback.Subtitles
	if cmd.Flags().Changed("subtitles") {
		subtitles = subtitlesFlag
	}

	playback.InitGStreamer()
	defer playback.DeinitGStreamer()
	log.Debug().Str("step", "gstreamer").Msg("media stack initialized")

	uiApp, err := ui.New(ctx)
	if err != nil {
		return err
	}
	log.Debug().Str("step", "ui").Msg("application shell ready")

	uri, err := media.ToPlaybackURI(inputFlag)
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	ctx = logging.WithURI(ctx, uri)
	log = logging.FromContext(ctx)
	log.Debug().Str("step", "resolve").Msg("input resolved")

	// Probing before the window exists turns a missing plugin into a clear
	// startup error instead of a blank window.
	if err := playback.ProbeVideoSink(ctx, nil); err != nil {
		return err
	}
	log.Debug().Str("step", "probe").Msg("video sink available")

	win, err := ui.NewWindow(ctx, ui.WindowOptions{
		Fullscreen: fullscreen,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Subtitles:  subtitles,
	})
	if err != nil {
		return err
	}
	log.Debug().Str("step", "window").Msg("player window built")

	// runErr is only written from GTK main loop callbacks and read after
	// Run returns, all on the main thread.
	var runErr error

	opts := playback.Options{
		Volume: cfg.Playback.Volume,
		OnBusEvent: func(ev playback.BusEvent) {
			switch ev.Kind {
			case playback.BusEOS:
				uiApp.Quit()
			case playback.BusError:
				runErr = ev.Err
				uiApp.QuitWithFailure()
			}
		},
	}
	if subtitles {
		opts.Subtitles = true
		opts.TextSink = win.SubtitleSink()
	}
	ctrl := playback.New(ctx, opts)

	if err := ctrl.Prepare(uri); err != nil {
		return err
	}
	log.Debug().Str("step", "prepare").Msg("pipeline prepared")

	bridge, err := signalbridge.Attach(ctx, signalbridge.Options{
		OnSignal: func(os.Signal) { uiApp.Quit() },
	})
	if err != nil {
		return err
	}
	defer bridge.Close()
	log.Debug().Str("step", "signals").Msg("signal bridge attached")

	win.ConnectRenderReady(func() {
		if err := ctrl.Start(win); err != nil {
			log.Error().Err(err).Msg("failed to start playback")
			runErr = err
			uiApp.QuitWithFailure()
			return
		}
		if cfg.History.Enabled {
			go recordPlayback(ctx, uri, cfg.History.MaxEntries)
		}
	})

	// The pipeline must stop and release its surface before GTK tears the
	// window down.
	uiApp.OnCleanup(ctrl.Close)

	if err := config.Watch(); err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	}
	config.OnConfigChange(func(c *config.Config) {
		logging.SetLevel(logging.ParseLevel(c.Logging.Level))
		// Enabling subtitles needs a restart; the pipeline was built
		// without the text tap. Disabling just hides the overlay.
		if subtitles && !c.Playback.Subtitles {
			win.SetSubtitleVisible(false)
		}
	})

	code := uiApp.Run(func() {
		uiApp.AddWindow(win)
		win.SetTitle(displayTitle(uri))
		win.Show()
	})

	if uiApp.Failed() {
		if runErr != nil {
			return fmt.Errorf("playback failed: %w", runErr)
		}
		return errors.New("playback failed")
	}
	if code != 0 {
		return fmt.Errorf("exited with status %d", code)
	}
	return nil
}

// recordPlayback writes the play to history off the UI thread and trims the
// table to the configured cap.
func recordPlayback(ctx context.Context, uri string, maxEntries int) {
	log := logging.FromContext(ctx)

	store, err := app.History()
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable, play not recorded")
		return
	}

	recCtx, cancel := context.WithTimeout(ctx, historyRecordTimeout)
	defer cancel()

	if err := store.Record(recCtx, uri, displayTitle(uri)); err != nil {
		log.Warn().Err(err).Msg("failed to record play")
		return
	}
	if err := store.Prune(recCtx, maxEntries); err != nil {
		log.Warn().Err(err).Msg("failed to prune history")
	}
	log.Debug().Msg("play recorded to history")
}

// displayTitle derives a window title from the playback URI, preferring the
// last path element.
func displayTitle(uri string) string {
	u, err := neturl.Parse(uri)
	if err != nil || u.Path == "" || u.Path == "/" {
		return uri
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return uri
	}
	if unescaped, err := neturl.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}
