package media

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/lumiere/internal/logging"
)

// RequiredElements are the GStreamer factories playback needs at runtime.
// The player fails fast at startup when one of these cannot be created; the
// doctor command checks them without starting a pipeline.
var RequiredElements = []string{"playbin", "glsinkbin", "gtk4paintablesink", "appsink"}

// ElementStatus reports availability of a single GStreamer element factory.
type ElementStatus struct {
	Name  string
	Found bool
}

// DiagnosticsResult aggregates everything the doctor command reports.
type DiagnosticsResult struct {
	GStreamerAvailable bool
	Elements           []ElementStatus
	MissingRequired    []string

	HasVAPlugin      bool
	VAAPIAvailable   bool
	VAAPIDriver      string
	VAAPIVersion     string
	H264Decoders     []string
	H265Decoders     []string
	AV1Decoders      []string
	VP9Decoders      []string
	HWAccelAvailable bool

	Warnings []string
}

// Diagnostics checks the GStreamer installation using system tools.
type Diagnostics struct{}

// NewDiagnostics creates a diagnostics runner.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Run checks element availability and VA-API support. Element probes run in
// parallel; each one shells out to gst-inspect-1.0.
func (d *Diagnostics) Run(ctx context.Context) *DiagnosticsResult {
	log := logging.FromContext(ctx)
	result := &DiagnosticsResult{}

	gstInspect, err := exec.LookPath("gst-inspect-1.0")
	if err != nil {
		log.Warn().Msg("gst-inspect-1.0 not found - GStreamer not installed, playback will fail")
		d.generateWarnings(result)
		return result
	}
	result.GStreamerAvailable = true

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, name := range RequiredElements {
		name := name
		g.Go(func() error {
			err := exec.CommandContext(gctx, gstInspect, "--exists", name).Run()
			mu.Lock()
			defer mu.Unlock()
			result.Elements = append(result.Elements, ElementStatus{Name: name, Found: err == nil})
			if err != nil {
				result.MissingRequired = append(result.MissingRequired, name)
			}
			return nil
		})
	}

	g.Go(func() error {
		out, err := exec.CommandContext(gctx, gstInspect, "va").Output()
		if err != nil {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		result.HasVAPlugin = true
		collectVADecoders(string(out), result)
		return nil
	})

	g.Go(func() error {
		driver, version, ok := probeVAAPI(gctx)
		mu.Lock()
		defer mu.Unlock()
		if driver != "" {
			result.VAAPIDriver = driver
		}
		result.VAAPIVersion = version
		result.VAAPIAvailable = ok
		return nil
	})

	_ = g.Wait()

	sortElements(result)
	result.HWAccelAvailable = result.HasVAPlugin
	d.generateWarnings(result)

	log.Info().
		Bool("gstreamer", result.GStreamerAvailable).
		Int("missing_elements", len(result.MissingRequired)).
		Bool("hw_accel", result.HWAccelAvailable).
		Str("vaapi_driver", result.VAAPIDriver).
		Msg("media diagnostics complete")

	return result
}

// sortElements keeps the report order stable regardless of probe completion
// order.
func sortElements(r *DiagnosticsResult) {
	order := make(map[string]int, len(RequiredElements))
	for i, name := range RequiredElements {
		order[name] = i
	}
	for i := 1; i < len(r.Elements); i++ {
		for j := i; j > 0 && order[r.Elements[j-1].Name] > order[r.Elements[j].Name]; j-- {
			r.Elements[j-1], r.Elements[j] = r.Elements[j], r.Elements[j-1]
		}
	}
}

// collectVADecoders extracts decoder names from gst-inspect-1.0 va output.
func collectVADecoders(output string, r *DiagnosticsResult) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		// Format: "  vah264dec: VA-API H.264 Decoder"
		switch {
		case strings.HasPrefix(line, "vaav1dec"):
			r.AV1Decoders = append(r.AV1Decoders, "vaav1dec")
		case strings.HasPrefix(line, "vah264dec"):
			r.H264Decoders = append(r.H264Decoders, "vah264dec")
		case strings.HasPrefix(line, "vah265dec"):
			r.H265Decoders = append(r.H265Decoders, "vah265dec")
		case strings.HasPrefix(line, "vavp9dec"):
			r.VP9Decoders = append(r.VP9Decoders, "vavp9dec")
		}
	}
}

// probeVAAPI reads the driver name and VA-API version via vainfo. The
// LIBVA_DRIVER_NAME override wins when set.
func probeVAAPI(ctx context.Context) (driver, version string, ok bool) {
	driver = os.Getenv("LIBVA_DRIVER_NAME")

	vainfo, err := exec.LookPath("vainfo")
	if err != nil {
		return driver, "", false
	}

	out, err := exec.CommandContext(ctx, vainfo).CombinedOutput()
	if err != nil {
		return driver, "", false
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)

		if driver == "" && strings.Contains(line, "Driver version:") {
			lower := strings.ToLower(line)
			switch {
			case strings.Contains(lower, "radeonsi") || strings.Contains(lower, "radeon"):
				driver = "radeonsi"
			case strings.Contains(lower, "i965"):
				driver = "i965"
			case strings.Contains(lower, "ihd") || strings.Contains(lower, "intel"):
				driver = "iHD"
			case strings.Contains(lower, "nvidia"):
				driver = "nvidia"
			}
		}

		if strings.Contains(line, "VA-API version:") {
			parts := strings.Split(line, ":")
			version = strings.TrimSpace(parts[len(parts)-1])
		}
	}

	return driver, version, true
}

// generateWarnings creates user-facing messages from the probe results.
func (d *Diagnostics) generateWarnings(r *DiagnosticsResult) {
	if !r.GStreamerAvailable {
		r.Warnings = append(r.Warnings,
			"CRITICAL: GStreamer not installed. Playback will not work!",
			"Install: gst-plugins-base gst-plugins-good gst-plugins-bad gst-libav",
		)
		return
	}

	hints := map[string]string{
		"playbin":           "gst-plugins-base",
		"glsinkbin":         "gst-plugins-base (OpenGL support)",
		"gtk4paintablesink": "gst-plugin-gtk4 (Arch) or gstreamer1.0-gtk4 (Debian/Ubuntu)",
		"appsink":           "gst-plugins-base",
	}
	for _, name := range r.MissingRequired {
		r.Warnings = append(r.Warnings,
			"Required element '"+name+"' missing. Install: "+hints[name])
	}

	if !r.HWAccelAvailable {
		r.Warnings = append(r.Warnings,
			"No hardware video acceleration detected. Video will use software decoding (higher CPU).",
			"Install VA plugin: gst-plugin-va (Arch) or gstreamer1.0-plugins-bad (Debian/Ubuntu)",
		)
		return
	}

	if len(r.AV1Decoders) == 0 {
		r.Warnings = append(r.Warnings,
			"AV1 hardware decoder not found. AV1 streams will use software decoding.")
	}
	if len(r.H264Decoders) == 0 {
		r.Warnings = append(r.Warnings,
			"No H.264 hardware decoder found. Most files will decode in software.")
	}
}
