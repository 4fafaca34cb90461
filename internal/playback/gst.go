package playback

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"
	"github.com/go-gst/go-gst/gst/app"
)

// gstFactory is the production ElementFactory.
type gstFactory struct{}

type gstElement struct {
	el      *gst.Element
	appSink *app.Sink // set only for appsink elements
}

func (gstFactory) Make(factoryName, name string) (Element, error) {
	if factoryName == "appsink" {
		sink, err := app.NewAppSink()
		if err != nil {
			return nil, fmt.Errorf("make appsink: %w", err)
		}
		if name != "" {
			if err := sink.Element.SetProperty("name", name); err != nil {
				return nil, fmt.Errorf("name appsink: %w", err)
			}
		}
		return &gstElement{el: sink.Element, appSink: sink}, nil
	}

	el, err := gst.NewElement(factoryName)
	if err != nil {
		return nil, fmt.Errorf("make %s: %w", factoryName, err)
	}
	if name != "" {
		if err := el.SetProperty("name", name); err != nil {
			return nil, fmt.Errorf("name %s: %w", factoryName, err)
		}
	}
	return &gstElement{el: el}, nil
}

func (gstFactory) ConnectSamples(el Element, onSample func([]byte)) error {
	ge, ok := el.(*gstElement)
	if !ok || ge.appSink == nil {
		return errors.New("element is not an appsink")
	}

	ge.appSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			sample := sink.PullSample()
			if sample == nil {
				return gst.FlowEOS
			}
			buffer := sample.GetBuffer()
			if buffer == nil {
				return gst.FlowError
			}
			mapInfo := buffer.Map(gst.MapRead)
			if mapInfo == nil {
				return gst.FlowError
			}
			// Copy before unmap; the mapped slice aliases GStreamer memory.
			data := append([]byte(nil), mapInfo.Bytes()...)
			buffer.Unmap()
			onSample(data)
			return gst.FlowOK
		},
	})
	return nil
}

func (gstFactory) WatchBus(pipeline Element, fn func(BusEvent)) error {
	ge, ok := pipeline.(*gstElement)
	if !ok {
		return errors.New("not a gstreamer element")
	}
	bus := ge.el.GetBus()
	if bus == nil {
		return errors.New("pipeline has no bus")
	}

	if ok := bus.AddWatch(func(msg *gst.Message) bool {
		switch msg.Type() {
		case gst.MessageError:
			gerr := msg.ParseError()
			fn(BusEvent{Kind: BusError, Err: gerr, Details: gerr.DebugString()})
		case gst.MessageWarning:
			gerr := msg.ParseWarning()
			fn(BusEvent{Kind: BusWarning, Err: gerr, Details: gerr.DebugString()})
		case gst.MessageEOS:
			fn(BusEvent{Kind: BusEOS})
		}
		return true
	}); !ok {
		return errors.New("bus already has a watch")
	}
	return nil
}

func (e *gstElement) Name() string {
	return e.el.GetName()
}

func (e *gstElement) Set(property string, value interface{}) error {
	// Unwrap element values so parent-child properties receive the real
	// GStreamer object.
	if child, ok := value.(*gstElement); ok {
		return e.el.SetProperty(property, child.el)
	}
	return e.el.SetProperty(property, value)
}

func (e *gstElement) SetState(s State) error {
	return e.el.SetState(gstState(s))
}

// Release halts the element. Object memory itself is reclaimed through the
// binding's lifetime management, never by a manual unref.
func (e *gstElement) Release() {
	_ = e.el.SetState(gst.StateNull)
}

// Paintable returns the native pointer of the sink's GdkPaintable. The UI
// layer re-wraps it for the widget toolkit.
func (e *gstElement) Paintable() (unsafe.Pointer, error) {
	v, err := e.el.GetProperty("paintable")
	if err != nil {
		return nil, fmt.Errorf("paintable property: %w", err)
	}
	obj, ok := v.(*glib.Object)
	if !ok || obj == nil {
		return nil, fmt.Errorf("paintable property is %T, want object", v)
	}
	return unsafe.Pointer(obj.Native()), nil
}

func gstState(s State) gst.State {
	switch s {
	case StateReady:
		return gst.StateReady
	case StatePaused:
		return gst.StatePaused
	case StatePlaying:
		return gst.StatePlaying
	default:
		return gst.StateNull
	}
}

// InitGStreamer initializes the GStreamer library. Must run before any
// element creation.
func InitGStreamer() {
	gst.Init(nil)
}

// DeinitGStreamer tears the library down. Only called on process exit.
func DeinitGStreamer() {
	gst.Deinit()
}
