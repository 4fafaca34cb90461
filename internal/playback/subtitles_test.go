package playback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_PrepareWiresSubtitleSink(t *testing.T) {
	t.Parallel()

	text := &fakeTextSink{}
	c, f := newTestController(t, Options{Subtitles: true, TextSink: text})
	require.NoError(t, c.Prepare("file:///tmp/video.mkv"))

	appsink := f.byFactory("appsink")
	require.NotNil(t, appsink)

	// Bounded to a single pending sample, dropping the oldest.
	assert.Equal(t, uint(1), appsink.props["max-buffers"])
	assert.Equal(t, true, appsink.props["drop"])

	playbin := f.byFactory("playbin")
	assert.Same(t, appsink, playbin.props["text-sink"])
	assert.Equal(t, 0x57, playbin.props["flags"])

	require.NotNil(t, f.onSample)
	f.onSample([]byte("Hello world\x00"))
	f.onSample([]byte("Second line"))

	assert.Equal(t, []string{"Hello world", "Second line"}, text.all())
}

func TestController_SubtitlesRequireTextSink(t *testing.T) {
	t.Parallel()

	f := newFakeFactory()
	c := New(context.Background(), Options{Subtitles: true, Factory: f})

	require.Error(t, c.Prepare("file:///tmp/video.mkv"))
	for _, el := range f.made {
		assert.Equal(t, 1, el.releases, "element %s", el.factory)
	}
}

func TestController_NoSubtitleSinkWithoutOption(t *testing.T) {
	t.Parallel()

	c, f := newTestController(t, Options{})
	require.NoError(t, c.Prepare("file:///tmp/video.mkv"))
	assert.Nil(t, f.byFactory("appsink"))
	assert.Nil(t, f.onSample)
}

func TestNormalizeSubtitleText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("Hello"), "Hello"},
		{"trailingNul", []byte("Hello\x00"), "Hello"},
		{"multipleNuls", []byte("Hello\x00\x00"), "Hello"},
		{"innerNulKept", []byte("He\x00llo"), "He\x00llo"},
		{"utf8", []byte("héllo wörld"), "héllo wörld"},
		{"empty", nil, ""},
		{"onlyNul", []byte{0}, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalizeSubtitleText(tt.in))
		})
	}
}
