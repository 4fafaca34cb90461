package styles_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bnema/lumiere/internal/cli/styles"
	"github.com/bnema/lumiere/internal/config"
	"github.com/bnema/lumiere/internal/media"
)

func TestDoctorRenderer_Healthy(t *testing.T) {
	theme := styles.NewTheme(config.DefaultConfig())
	r := styles.NewDoctorRenderer(theme)

	out := r.Render(&media.DiagnosticsResult{
		GStreamerAvailable: true,
		Elements: []media.ElementStatus{
			{Name: "playbin", Found: true},
			{Name: "gtk4paintablesink", Found: true},
		},
		HWAccelAvailable: true,
		VAAPIAvailable:   true,
		VAAPIDriver:      "iHD",
		H264Decoders:     []string{"vah264dec"},
	})

	require.Contains(t, out, "Doctor")
	require.Contains(t, out, "OK")
	require.Contains(t, out, "playbin")
	require.Contains(t, out, "gtk4paintablesink")
	require.Contains(t, out, "vah264dec")
	require.Contains(t, out, "iHD")
	require.NotContains(t, out, "Needs attention")
}

func TestDoctorRenderer_MissingElements(t *testing.T) {
	theme := styles.NewTheme(config.DefaultConfig())
	r := styles.NewDoctorRenderer(theme)

	out := r.Render(&media.DiagnosticsResult{
		GStreamerAvailable: true,
		Elements: []media.ElementStatus{
			{Name: "playbin", Found: true},
			{Name: "glsinkbin", Found: false},
		},
		MissingRequired: []string{"glsinkbin"},
		Warnings:        []string{"install gstreamer1.0-gl"},
	})

	require.Contains(t, out, "Needs attention")
	require.Contains(t, out, "Missing")
	require.Contains(t, out, "software only")
	require.Contains(t, out, "install gstreamer1.0-gl")
}
