package signalbridge

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// SIGWINCH is used throughout: its default disposition is harmless, so the
// process survives deliveries that happen after the bridge has reset it.

func TestAttach_RequiresCallback(t *testing.T) {
	_, err := Attach(context.Background(), Options{})
	require.ErrorIs(t, err, ErrNoCallback)
}

func TestAttach_SkipsIgnoredSignals(t *testing.T) {
	ignored := func(sig os.Signal) bool { return sig == unix.SIGHUP }

	b, err := Attach(context.Background(), Options{
		Signals:  []os.Signal{unix.SIGHUP, unix.SIGWINCH},
		OnSignal: func(os.Signal) {},
		ignored:  ignored,
	})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, []os.Signal{unix.SIGWINCH}, b.Attached())
	assert.Equal(t, []os.Signal{unix.SIGHUP}, b.Skipped())
}

func TestBridge_DeliversSignal(t *testing.T) {
	got := make(chan os.Signal, 1)

	b, err := Attach(context.Background(), Options{
		Signals:  []os.Signal{unix.SIGWINCH},
		OnSignal: func(sig os.Signal) { got <- sig },
	})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGWINCH))

	select {
	case sig := <-got:
		assert.Equal(t, unix.SIGWINCH, sig)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal delivery")
	}
}

func TestBridge_InertAfterClose(t *testing.T) {
	got := make(chan os.Signal, 1)

	b, err := Attach(context.Background(), Options{
		Signals:  []os.Signal{unix.SIGWINCH},
		OnSignal: func(sig os.Signal) { got <- sig },
	})
	require.NoError(t, err)
	require.True(t, b.Active())

	b.Close()
	assert.False(t, b.Active())

	// Disposition is restored, so this delivery must not reach the callback.
	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGWINCH))

	select {
	case <-got:
		t.Fatal("callback fired after Close")
	case <-time.After(100 * time.Millisecond):
	}

	// Close is idempotent, and a nil bridge is safe.
	b.Close()
	var nilBridge *Bridge
	nilBridge.Close()
	assert.False(t, nilBridge.Active())
}
