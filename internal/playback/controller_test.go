package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects ordered events from fakes so tests can assert sequence.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) indexOf(ev string) int {
	for i, e := range r.all() {
		if e == ev {
			return i
		}
	}
	return -1
}

type fakeElement struct {
	rec       *recorder
	factory   string
	name      string
	props     map[string]interface{}
	children  []*fakeElement
	releases  int
	states    []State
	failSet   map[string]error
	failPlay  error
	paintable unsafe.Pointer
	failPaint error
}

func (f *fakeElement) Name() string { return f.name }

func (f *fakeElement) Set(property string, value interface{}) error {
	if err := f.failSet[property]; err != nil {
		return err
	}
	f.props[property] = value
	if child, ok := value.(*fakeElement); ok {
		f.children = append(f.children, child)
	}
	return nil
}

func (f *fakeElement) SetState(s State) error {
	if s == StatePlaying && f.failPlay != nil {
		return f.failPlay
	}
	f.states = append(f.states, s)
	f.rec.add(fmt.Sprintf("state:%s:%s", f.name, s))
	return nil
}

func (f *fakeElement) Release() {
	f.releases++
	f.rec.add("release:" + f.name)
	for _, c := range f.children {
		c.Release()
	}
}

func (f *fakeElement) Paintable() (unsafe.Pointer, error) {
	if f.failPaint != nil {
		return nil, f.failPaint
	}
	return f.paintable, nil
}

type fakeFactory struct {
	rec         *recorder
	made        []*fakeElement
	failMake    map[string]error
	failSet     map[string]map[string]error // factory -> property -> err
	failConnect error
	failWatch   error
	onSample    func([]byte)
	busFn       func(BusEvent)
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{rec: &recorder{}}
}

func (f *fakeFactory) Make(factoryName, name string) (Element, error) {
	if err := f.failMake[factoryName]; err != nil {
		return nil, err
	}
	el := &fakeElement{
		rec:       f.rec,
		factory:   factoryName,
		name:      name,
		props:     map[string]interface{}{},
		failSet:   f.failSet[factoryName],
		paintable: unsafe.Pointer(new(byte)),
	}
	f.made = append(f.made, el)
	return el, nil
}

func (f *fakeFactory) ConnectSamples(el Element, onSample func([]byte)) error {
	if f.failConnect != nil {
		return f.failConnect
	}
	f.onSample = onSample
	return nil
}

func (f *fakeFactory) WatchBus(pipeline Element, fn func(BusEvent)) error {
	if f.failWatch != nil {
		return f.failWatch
	}
	f.busFn = fn
	return nil
}

func (f *fakeFactory) byFactory(name string) *fakeElement {
	for _, el := range f.made {
		if el.factory == name {
			return el
		}
	}
	return nil
}

type fakeSurface struct {
	rec        *recorder
	attached   []unsafe.Pointer
	detaches   int
	failAttach error
}

func (s *fakeSurface) Attach(p unsafe.Pointer) error {
	if s.failAttach != nil {
		return s.failAttach
	}
	s.attached = append(s.attached, p)
	if s.rec != nil {
		s.rec.add("attach")
	}
	return nil
}

func (s *fakeSurface) Detach() {
	s.detaches++
	if s.rec != nil {
		s.rec.add("detach")
	}
}

type fakeTextSink struct {
	mu    sync.Mutex
	texts []string
}

func (s *fakeTextSink) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *fakeTextSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func newTestController(t *testing.T, opts Options) (*Controller, *fakeFactory) {
	t.Helper()
	f := newFakeFactory()
	opts.Factory = f
	return New(context.Background(), opts), f
}

func TestController_PrepareBuildsPipeline(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))

	playbin := f.byFactory("playbin")
	sinkBin := f.byFactory("glsinkbin")
	videoSink := f.byFactory("gtk4paintablesink")
	require.NotNil(t, playbin)
	require.NotNil(t, sinkBin)
	require.NotNil(t, videoSink)

	assert.Equal(t, "file:///tmp/video.mp4", playbin.props["uri"])
	// Text bit masked out: no text sink, so playbin must not render
	// subtitles itself.
	assert.Equal(t, 0x53, playbin.props["flags"])
	assert.Same(t, sinkBin, playbin.props["video-sink"])
	assert.Same(t, videoSink, sinkBin.props["sink"])

	for _, el := range f.made {
		assert.Zero(t, el.releases, "element %s released during successful prepare", el.factory)
	}
	assert.True(t, c.Prepared())
	assert.False(t, c.Started())
}

func TestController_PrepareSetsVolume(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{Volume: 0.5})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))

	playbin := f.byFactory("playbin")
	assert.Equal(t, 0.5, playbin.props["volume"])
}

func TestController_PrepareKeepsDefaultVolume(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))

	playbin := f.byFactory("playbin")
	_, set := playbin.props["volume"]
	assert.False(t, set)
}

func TestController_PrepareTwiceRejected(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///a.mp4"))
	require.ErrorIs(t, c.Prepare("file:///b.mp4"), ErrAlreadyPrepared)
}

func TestController_PrepareEmptyURI(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	require.Error(t, c.Prepare(""))
	assert.Empty(t, f.made)
}

func TestController_PrepareFailureReleasesElements(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name      string
		subtitles bool
		mutate    func(*fakeFactory)
	}{
		{"playbinMissing", false, func(f *fakeFactory) {
			f.failMake = map[string]error{"playbin": boom}
		}},
		{"sinkBinMissing", false, func(f *fakeFactory) {
			f.failMake = map[string]error{"glsinkbin": boom}
		}},
		{"videoSinkMissing", false, func(f *fakeFactory) {
			f.failMake = map[string]error{"gtk4paintablesink": boom}
		}},
		{"wireSinkFails", false, func(f *fakeFactory) {
			f.failSet = map[string]map[string]error{"glsinkbin": {"sink": boom}}
		}},
		{"setURIFails", false, func(f *fakeFactory) {
			f.failSet = map[string]map[string]error{"playbin": {"uri": boom}}
		}},
		{"wireVideoSinkFails", false, func(f *fakeFactory) {
			f.failSet = map[string]map[string]error{"playbin": {"video-sink": boom}}
		}},
		{"appsinkMissing", true, func(f *fakeFactory) {
			f.failMake = map[string]error{"appsink": boom}
		}},
		{"subtitleConfigFails", true, func(f *fakeFactory) {
			f.failSet = map[string]map[string]error{"appsink": {"max-buffers": boom}}
		}},
		{"subtitleConnectFails", true, func(f *fakeFactory) {
			f.failConnect = boom
		}},
		{"wireTextSinkFails", true, func(f *fakeFactory) {
			f.failSet = map[string]map[string]error{"playbin": {"text-sink": boom}}
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFakeFactory()
			tt.mutate(f)
			c := New(context.Background(), Options{
				Subtitles: tt.subtitles,
				TextSink:  &fakeTextSink{},
				Factory:   f,
			})

			require.ErrorIs(t, c.Prepare("file:///tmp/video.mp4"), boom)
			assert.False(t, c.Prepared())

			for _, el := range f.made {
				assert.Equal(t, 1, el.releases,
					"element %s must be released exactly once", el.factory)
			}
		})
	}
}

func TestController_PrepareRetryAfterFailure(t *testing.T) {
	t.Parallel()

	f := newFakeFactory()
	f.failMake = map[string]error{"glsinkbin": errors.New("boom")}
	c := New(context.Background(), Options{Factory: f})

	require.Error(t, c.Prepare("file:///tmp/video.mp4"))

	f.failMake = nil
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))
	assert.True(t, c.Prepared())
}

func TestController_StartBeforePrepare(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, Options{})
	surface := &fakeSurface{}

	require.ErrorIs(t, c.Start(surface), ErrNotPrepared)
	assert.Empty(t, surface.attached)
}

func TestController_StartAttachesThenPlays(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))

	surface := &fakeSurface{rec: f.rec}
	require.NoError(t, c.Start(surface))

	videoSink := f.byFactory("gtk4paintablesink")
	require.Len(t, surface.attached, 1)
	assert.Equal(t, videoSink.paintable, surface.attached[0])

	playbin := f.byFactory("playbin")
	assert.Contains(t, playbin.states, StatePlaying)

	// The surface must hold the paintable before the pipeline rolls.
	attachIdx := f.rec.indexOf("attach")
	playIdx := f.rec.indexOf("state:playbin:playing")
	require.GreaterOrEqual(t, attachIdx, 0)
	require.GreaterOrEqual(t, playIdx, 0)
	assert.Less(t, attachIdx, playIdx)

	assert.True(t, c.Started())
	require.ErrorIs(t, c.Start(surface), ErrAlreadyStarted)
}

func TestController_StartNilSurface(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))
	require.ErrorIs(t, c.Start(nil), ErrNoSurface)
}

func TestController_StartPlayFailureDetaches(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))

	f.byFactory("playbin").failPlay = errors.New("no decoder")
	surface := &fakeSurface{}

	err := c.Start(surface)
	require.Error(t, err)
	assert.Equal(t, 1, surface.detaches)
	assert.False(t, c.Started())
	assert.True(t, c.Prepared())
}

func TestController_CloseReleasesOnce(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))

	surface := &fakeSurface{rec: f.rec}
	require.NoError(t, c.Start(surface))

	c.Close()

	playbin := f.byFactory("playbin")
	assert.Contains(t, playbin.states, StateNull)
	assert.Equal(t, 1, surface.detaches)
	for _, el := range f.made {
		assert.Equal(t, 1, el.releases, "element %s", el.factory)
	}

	// Detach happens before the pipeline handle is dropped.
	detachIdx := f.rec.indexOf("detach")
	releaseIdx := f.rec.indexOf("release:playbin")
	assert.Less(t, detachIdx, releaseIdx)

	c.Close()
	for _, el := range f.made {
		assert.Equal(t, 1, el.releases, "element %s released again by second close", el.factory)
	}

	require.ErrorIs(t, c.Start(surface), ErrClosed)
	require.ErrorIs(t, c.Prepare("file:///x.mp4"), ErrClosed)
}

func TestController_CloseWithoutPrepare(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	c.Close()
	assert.Empty(t, f.made)
}

func TestController_BusEventsForwarded(t *testing.T) {
	t.Parallel()

	var got []BusEvent
	f := newFakeFactory()
	c := New(context.Background(), Options{
		Factory:    f,
		OnBusEvent: func(ev BusEvent) { got = append(got, ev) },
	})
	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))
	require.NotNil(t, f.busFn)

	f.busFn(BusEvent{Kind: BusError, Err: errors.New("decode failed")})
	f.busFn(BusEvent{Kind: BusEOS})

	require.Len(t, got, 2)
	assert.Equal(t, BusError, got[0].Kind)
	assert.Equal(t, BusEOS, got[1].Kind)
}

func TestController_BusWatchFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newFakeFactory()
	f.failWatch = errors.New("no bus")
	c := New(context.Background(), Options{Factory: f})

	require.NoError(t, c.Prepare("file:///tmp/video.mp4"))
	assert.True(t, c.Prepared())
}

func TestProbeVideoSink(t *testing.T) {
	t.Parallel()

	t.Run("available", func(t *testing.T) {
		t.Parallel()
		f := newFakeFactory()
		require.NoError(t, ProbeVideoSink(context.Background(), f))
		probe := f.byFactory("gtk4paintablesink")
		require.NotNil(t, probe)
		assert.Equal(t, 1, probe.releases)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		f := newFakeFactory()
		f.failMake = map[string]error{"gtk4paintablesink": errors.New("no such element")}
		require.Error(t, ProbeVideoSink(context.Background(), f))
	})
}
