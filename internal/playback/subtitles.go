package playback

import (
	"bytes"
	"fmt"

	"github.com/bnema/lumiere/internal/guard"
)

// TextSink receives decoded subtitle text. Implementations are called from
// the appsink streaming thread and must hop to the UI thread themselves.
type TextSink interface {
	SetText(text string)
}

// The appsink keeps at most one pending sample and drops the oldest when a
// new one arrives, so a stalled consumer can never make the subtitle queue
// grow.
const (
	subtitleMaxBuffers = uint(1)
	subtitleDrop       = true
)

// prepareSubtitleSink builds the appsink subtitle tap and hands it to
// playbin as the text sink. Caller holds c.mu.
func (c *Controller) prepareSubtitleSink(playbin Element) error {
	if c.opts.TextSink == nil {
		return fmt.Errorf("playback: subtitles enabled without a text sink")
	}

	textSink, err := c.factory.Make("appsink", "subtitle-sink")
	if err != nil {
		return fmt.Errorf("playback: create subtitle appsink: %w", err)
	}
	textGuard := guard.New(textSink.Release)
	defer textGuard.Run()

	if err := textSink.Set("max-buffers", subtitleMaxBuffers); err != nil {
		return fmt.Errorf("playback: bound subtitle queue: %w", err)
	}
	if err := textSink.Set("drop", subtitleDrop); err != nil {
		return fmt.Errorf("playback: set subtitle drop: %w", err)
	}
	if err := c.factory.ConnectSamples(textSink, c.onSubtitleSample); err != nil {
		return fmt.Errorf("playback: connect subtitle samples: %w", err)
	}

	// Playbin takes ownership of the appsink.
	if err := playbin.Set("text-sink", textSink); err != nil {
		return fmt.Errorf("playback: wire subtitle sink: %w", err)
	}
	textGuard.Dismiss()

	return nil
}

func (c *Controller) onSubtitleSample(data []byte) {
	c.opts.TextSink.SetText(normalizeSubtitleText(data))
}

// normalizeSubtitleText converts raw sample bytes to a string. Subtitle
// buffers from some demuxers carry a trailing NUL.
func normalizeSubtitleText(data []byte) string {
	return string(bytes.TrimRight(data, "\x00"))
}
