package ui

import (
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// LabelSink feeds subtitle text into an overlay label. Samples arrive on
// GStreamer streaming threads, so every update hops onto the GTK main
// context first.
type LabelSink struct {
	label *gtk.Label
}

// NewLabelSink wraps label as a subtitle text sink.
func NewLabelSink(label *gtk.Label) *LabelSink {
	return &LabelSink{label: label}
}

// SetText replaces the displayed subtitle line. An empty string hides the
// overlay so stale cues never linger between dialogue.
func (s *LabelSink) SetText(text string) {
	glib.IdleAdd(func() bool {
		s.label.SetText(text)
		s.label.SetVisible(text != "")
		return false
	})
}
