// Package signalbridge forwards POSIX termination signals to an application
// callback. Signal delivery itself only enqueues on a buffered channel; the
// callback runs on an ordinary goroutine, so callers that need the UI thread
// must hop themselves (e.g. via glib.IdleAdd).
//
// Signals that are already ignored at process level keep their disposition,
// and Close restores whatever disposition was in effect before Attach.
package signalbridge

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/bnema/lumiere/internal/logging"
)

// ErrNoCallback is returned by Attach when no OnSignal callback is given.
var ErrNoCallback = errors.New("signalbridge: OnSignal callback is required")

// DefaultSignals returns the termination signals the bridge watches when
// Options.Signals is empty.
func DefaultSignals() []os.Signal {
	return []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGQUIT, unix.SIGHUP}
}

// Options configures Attach.
type Options struct {
	// Signals to watch. Defaults to DefaultSignals().
	Signals []os.Signal

	// OnSignal is invoked once per received signal, from a goroutine.
	OnSignal func(os.Signal)

	// ignored overrides the process-disposition probe in tests.
	ignored func(os.Signal) bool
}

// Bridge relays registered signals until Close is called.
type Bridge struct {
	ch       chan os.Signal
	quit     chan struct{}
	done     chan struct{}
	attached []os.Signal
	skipped  []os.Signal

	active    atomic.Bool
	closeOnce sync.Once
}

// Attach registers the signal set and starts forwarding. Signals whose
// process disposition is "ignore" are skipped entirely so that an inherited
// SIG_IGN (e.g. from nohup) stays in force.
func Attach(ctx context.Context, opts Options) (*Bridge, error) {
	log := logging.FromContext(ctx)

	if opts.OnSignal == nil {
		return nil, ErrNoCallback
	}

	sigs := opts.Signals
	if len(sigs) == 0 {
		sigs = DefaultSignals()
	}

	isIgnored := opts.ignored
	if isIgnored == nil {
		isIgnored = signal.Ignored
	}

	b := &Bridge{
		ch:   make(chan os.Signal, len(sigs)+1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	for _, sig := range sigs {
		if isIgnored(sig) {
			b.skipped = append(b.skipped, sig)
			log.Debug().Str("signal", sig.String()).Msg("signal ignored at process level, leaving untouched")
			continue
		}
		b.attached = append(b.attached, sig)
	}

	if len(b.attached) > 0 {
		signal.Notify(b.ch, b.attached...)
	}

	b.active.Store(true)
	go b.forward(ctx, opts.OnSignal)

	log.Debug().
		Int("attached", len(b.attached)).
		Int("skipped", len(b.skipped)).
		Msg("signal bridge attached")

	return b, nil
}

func (b *Bridge) forward(ctx context.Context, notify func(os.Signal)) {
	defer close(b.done)
	log := logging.FromContext(ctx)

	for {
		select {
		case sig := <-b.ch:
			if !b.active.Load() {
				continue
			}
			log.Info().Str("signal", sig.String()).Msg("signal received")
			notify(sig)
		case <-b.quit:
			return
		}
	}
}

// Close restores the prior disposition of every attached signal, stops
// delivery, and waits for the forwarding goroutine to exit. After Close the
// bridge is inert; further calls are no-ops.
func (b *Bridge) Close() {
	if b == nil {
		return
	}
	b.closeOnce.Do(func() {
		b.active.Store(false)
		if len(b.attached) > 0 {
			signal.Reset(b.attached...)
		}
		signal.Stop(b.ch)
		close(b.quit)
		<-b.done
	})
}

// Active reports whether the bridge is still forwarding signals.
func (b *Bridge) Active() bool {
	return b != nil && b.active.Load()
}

// Attached returns the signals the bridge actually registered.
func (b *Bridge) Attached() []os.Signal {
	out := make([]os.Signal, len(b.attached))
	copy(out, b.attached)
	return out
}

// Skipped returns the signals left alone because the process ignores them.
func (b *Bridge) Skipped() []os.Signal {
	out := make([]os.Signal, len(b.skipped))
	copy(out, b.skipped)
	return out
}
