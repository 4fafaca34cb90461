package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleVAOutput = `Plugin Details:
  Name                     va
  Description              VA-API codecs plugin

  vaav1dec: VA-API AV1 Decoder
  vah264dec: VA-API H.264 Decoder
  vah265dec: VA-API H.265 Decoder
  vajpegdec: VA-API JPEG Decoder
  vavp9dec: VA-API VP9 Decoder

  5 features:
`

func TestCollectVADecoders(t *testing.T) {
	t.Parallel()

	r := &DiagnosticsResult{}
	collectVADecoders(sampleVAOutput, r)

	assert.Equal(t, []string{"vaav1dec"}, r.AV1Decoders)
	assert.Equal(t, []string{"vah264dec"}, r.H264Decoders)
	assert.Equal(t, []string{"vah265dec"}, r.H265Decoders)
	assert.Equal(t, []string{"vavp9dec"}, r.VP9Decoders)
}

func TestSortElements(t *testing.T) {
	t.Parallel()

	r := &DiagnosticsResult{
		Elements: []ElementStatus{
			{Name: "appsink", Found: true},
			{Name: "playbin", Found: true},
			{Name: "gtk4paintablesink", Found: false},
			{Name: "glsinkbin", Found: true},
		},
	}
	sortElements(r)

	names := make([]string, 0, len(r.Elements))
	for _, e := range r.Elements {
		names = append(names, e.Name)
	}
	assert.Equal(t, RequiredElements, names)
}

func TestGenerateWarnings(t *testing.T) {
	t.Parallel()

	t.Run("noGStreamer", func(t *testing.T) {
		t.Parallel()
		d := NewDiagnostics()
		r := &DiagnosticsResult{}
		d.generateWarnings(r)
		assert.NotEmpty(t, r.Warnings)
		assert.Contains(t, r.Warnings[0], "CRITICAL")
	})

	t.Run("missingElement", func(t *testing.T) {
		t.Parallel()
		d := NewDiagnostics()
		r := &DiagnosticsResult{
			GStreamerAvailable: true,
			HWAccelAvailable:   true,
			MissingRequired:    []string{"gtk4paintablesink"},
			AV1Decoders:        []string{"vaav1dec"},
			H264Decoders:       []string{"vah264dec"},
		}
		d.generateWarnings(r)
		assert.Len(t, r.Warnings, 1)
		assert.Contains(t, r.Warnings[0], "gtk4paintablesink")
	})

	t.Run("healthySystemNoWarnings", func(t *testing.T) {
		t.Parallel()
		d := NewDiagnostics()
		r := &DiagnosticsResult{
			GStreamerAvailable: true,
			HWAccelAvailable:   true,
			AV1Decoders:        []string{"vaav1dec"},
			H264Decoders:       []string{"vah264dec"},
		}
		d.generateWarnings(r)
		assert.Empty(t, r.Warnings)
	})
}
