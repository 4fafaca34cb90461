// Package playback builds and drives the GStreamer pipeline that feeds the
// UI's video surface. The Controller owns the pipeline across its two-phase
// lifecycle (prepare, then start once the surface can render); element
// construction goes through an ElementFactory so the lifecycle logic is
// testable without a running GStreamer.
package playback

import "unsafe"

// State is a pipeline element state.
type State int

const (
	StateNull State = iota
	StateReady
	StatePaused
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateReady:
		return "ready"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Element is the property and state surface the controller drives.
type Element interface {
	Name() string
	Set(property string, value interface{}) error
	SetState(s State) error

	// Release frees the element. Once ownership has transferred to a parent
	// (via a Set of an object-valued property) the parent frees it instead,
	// and Release must not be called.
	Release()
}

// PaintableProvider is implemented by video sink elements that expose a
// render object for the UI to adopt.
type PaintableProvider interface {
	Paintable() (unsafe.Pointer, error)
}

// RenderSurface adopts the sink's paintable. Attach is called at start;
// Detach runs during teardown, before the surface's window is destroyed.
type RenderSurface interface {
	Attach(paintable unsafe.Pointer) error
	Detach()
}

// BusEventKind classifies pipeline bus messages the controller surfaces.
type BusEventKind int

const (
	BusError BusEventKind = iota
	BusWarning
	BusEOS
)

// BusEvent is a pipeline bus message forwarded to the application.
type BusEvent struct {
	Kind    BusEventKind
	Err     error
	Details string
}

// ElementFactory creates pipeline elements and wires pipeline-level
// callbacks.
type ElementFactory interface {
	// Make creates an element from the named factory.
	Make(factoryName, name string) (Element, error)

	// ConnectSamples registers a new-sample callback on an appsink element.
	// The callback receives a copy of each sample's bytes.
	ConnectSamples(el Element, onSample func([]byte)) error

	// WatchBus routes bus messages of the given pipeline to fn. The watch
	// runs on the GLib main context, so fn is called on the UI thread.
	WatchBus(pipeline Element, fn func(BusEvent)) error
}
