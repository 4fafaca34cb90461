package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bnema/lumiere/internal/guard"
	"github.com/bnema/lumiere/internal/logging"
)

var (
	// ErrNotPrepared is returned by Start when Prepare has not succeeded.
	ErrNotPrepared = errors.New("playback: pipeline not prepared")
	// ErrAlreadyPrepared is returned by a second Prepare.
	ErrAlreadyPrepared = errors.New("playback: pipeline already prepared")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("playback: playback already started")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("playback: controller closed")
	// ErrNoSurface is returned by Start when no render surface is given.
	ErrNoSurface = errors.New("playback: render surface required")
)

type phase int

const (
	phaseIdle phase = iota
	phasePrepared
	phaseStarted
	phaseClosed
)

// Options configures a Controller.
type Options struct {
	// Subtitles wires an appsink as the playbin text sink and forwards
	// decoded subtitle text to TextSink.
	Subtitles bool

	// TextSink receives subtitle text. Required when Subtitles is set.
	TextSink TextSink

	// Flags overrides DefaultFlags when non-zero.
	Flags Flag

	// Volume is the initial playback volume. Zero keeps playbin's default.
	Volume float64

	// OnBusEvent receives pipeline errors, warnings and end-of-stream.
	// Called on the UI thread.
	OnBusEvent func(BusEvent)

	// Factory overrides the GStreamer-backed element factory in tests.
	Factory ElementFactory
}

// Controller owns the playbin pipeline through prepare, start and teardown.
// Methods are safe for concurrent use, though normal operation drives them
// from the UI thread.
type Controller struct {
	log  zerolog.Logger
	opts Options

	mu        sync.Mutex
	phase     phase
	factory   ElementFactory
	playbin   Element
	videoSink Element
	surface   RenderSurface

	// release frees the playbin (and through it every adopted child)
	// exactly once.
	release *guard.Guard
}

// New creates a Controller. The context supplies the logger.
func New(ctx context.Context, opts Options) *Controller {
	factory := opts.Factory
	if factory == nil {
		factory = gstFactory{}
	}
	return &Controller{
		log:     *logging.FromContext(logging.WithComponent(ctx, "playback")),
		opts:    opts,
		factory: factory,
	}
}

// Prepare builds the pipeline for the given URI: playbin, a glsinkbin
// wrapping the paintable video sink, and optionally the subtitle appsink.
// Each element is covered by a cleanup guard that is dismissed exactly when
// ownership transfers to its parent, so a failure at any stage releases
// everything still owned and leaves the controller reusable for another
// Prepare.
func (c *Controller) Prepare(uri string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case phaseClosed:
		return ErrClosed
	case phasePrepared, phaseStarted:
		return ErrAlreadyPrepared
	}
	if uri == "" {
		return fmt.Errorf("playback: %w", errEmptyURI)
	}

	playbin, err := c.factory.Make("playbin", "playbin")
	if err != nil {
		return fmt.Errorf("playback: create playbin: %w", err)
	}
	playbinGuard := guard.New(playbin.Release)
	defer playbinGuard.Run()

	sinkBin, err := c.factory.Make("glsinkbin", "video-sink-bin")
	if err != nil {
		return fmt.Errorf("playback: create glsinkbin: %w", err)
	}
	sinkBinGuard := guard.New(sinkBin.Release)
	defer sinkBinGuard.Run()

	videoSink, err := c.factory.Make("gtk4paintablesink", "video-sink")
	if err != nil {
		return fmt.Errorf("playback: create gtk4paintablesink: %w", err)
	}
	videoSinkGuard := guard.New(videoSink.Release)
	defer videoSinkGuard.Run()

	// The bin takes ownership of the paintable sink.
	if err := sinkBin.Set("sink", videoSink); err != nil {
		return fmt.Errorf("playback: wire video sink into bin: %w", err)
	}
	videoSinkGuard.Dismiss()

	flags := c.opts.Flags
	if flags == 0 {
		flags = DefaultFlags
	}
	// Without a text sink playbin would burn subtitles into the video
	// frames itself. Subtitles off means off.
	if !c.opts.Subtitles {
		flags &^= FlagText
	}
	if err := playbin.Set("uri", uri); err != nil {
		return fmt.Errorf("playback: set uri: %w", err)
	}
	if err := playbin.Set("flags", int(flags)); err != nil {
		return fmt.Errorf("playback: set flags: %w", err)
	}
	if c.opts.Volume > 0 {
		if err := playbin.Set("volume", c.opts.Volume); err != nil {
			return fmt.Errorf("playback: set volume: %w", err)
		}
	}

	// Playbin takes ownership of the bin.
	if err := playbin.Set("video-sink", sinkBin); err != nil {
		return fmt.Errorf("playback: wire video sink bin: %w", err)
	}
	sinkBinGuard.Dismiss()

	if c.opts.Subtitles {
		if err := c.prepareSubtitleSink(playbin); err != nil {
			return err
		}
	}

	if err := c.factory.WatchBus(playbin, c.onBusEvent); err != nil {
		c.log.Warn().Err(err).Msg("bus watch unavailable, pipeline errors will not be reported")
	}

	playbinGuard.Dismiss()
	c.playbin = playbin
	c.videoSink = videoSink
	c.release = guard.New(playbin.Release)
	c.phase = phasePrepared

	c.log.Info().
		Str("uri", uri).
		Bool("subtitles", c.opts.Subtitles).
		Str("flags", fmt.Sprintf("%#x", int(flags))).
		Msg("pipeline prepared")

	return nil
}

// Start attaches the render surface and sets the pipeline playing. It is
// only valid after a successful Prepare.
func (c *Controller) Start(surface RenderSurface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case phaseIdle:
		return ErrNotPrepared
	case phaseStarted:
		return ErrAlreadyStarted
	case phaseClosed:
		return ErrClosed
	}
	if surface == nil {
		return ErrNoSurface
	}

	provider, ok := c.videoSink.(PaintableProvider)
	if !ok {
		return fmt.Errorf("playback: video sink %q exposes no paintable", c.videoSink.Name())
	}
	paintable, err := provider.Paintable()
	if err != nil {
		return fmt.Errorf("playback: obtain paintable: %w", err)
	}
	if err := surface.Attach(paintable); err != nil {
		return fmt.Errorf("playback: attach render surface: %w", err)
	}

	if err := c.playbin.SetState(StatePlaying); err != nil {
		surface.Detach()
		return fmt.Errorf("playback: start playback: %w", err)
	}

	c.surface = surface
	c.phase = phaseStarted
	c.log.Info().Msg("playback started")
	return nil
}

// Close stops the pipeline and releases it. The surface is detached before
// this returns, so callers can destroy the window afterwards without leaving
// the toolkit a dangling GPU surface. Close is idempotent and safe on a
// controller that never prepared.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == phaseClosed {
		return
	}

	if c.playbin != nil {
		if err := c.playbin.SetState(StateNull); err != nil {
			c.log.Warn().Err(err).Msg("failed to null pipeline state")
		}
	}
	if c.surface != nil {
		c.surface.Detach()
		c.surface = nil
	}
	c.release.Run()
	c.playbin = nil
	c.videoSink = nil
	c.phase = phaseClosed
	c.log.Debug().Msg("pipeline released")
}

// Prepared reports whether Prepare has succeeded and Close has not run.
func (c *Controller) Prepared() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == phasePrepared || c.phase == phaseStarted
}

// Started reports whether playback is running.
func (c *Controller) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == phaseStarted
}

func (c *Controller) onBusEvent(ev BusEvent) {
	switch ev.Kind {
	case BusError:
		c.log.Error().Err(ev.Err).Str("details", ev.Details).Msg("pipeline error")
	case BusWarning:
		c.log.Warn().Err(ev.Err).Str("details", ev.Details).Msg("pipeline warning")
	case BusEOS:
		c.log.Info().Msg("end of stream")
	}
	if c.opts.OnBusEvent != nil {
		c.opts.OnBusEvent(ev)
	}
}

var errEmptyURI = errors.New("empty uri")

// ProbeVideoSink verifies the paintable video sink element is installed by
// creating and immediately releasing one. Run before any UI construction so
// a missing sink fails fast with a clear error instead of a blank window.
func ProbeVideoSink(ctx context.Context, factory ElementFactory) error {
	if factory == nil {
		factory = gstFactory{}
	}
	el, err := factory.Make("gtk4paintablesink", "probe-sink")
	if err != nil {
		return fmt.Errorf("playback: gtk4paintablesink unavailable (install gst-plugin-gtk4): %w", err)
	}
	el.Release()
	logging.FromContext(ctx).Debug().Msg("video sink probe ok")
	return nil
}
