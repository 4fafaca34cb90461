package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/lumiere/internal/media"
)

const (
	statusYes = "Yes"
	statusNo  = "No"
)

// DoctorRenderer renders media diagnostics reports.
type DoctorRenderer struct {
	theme *Theme
}

// NewDoctorRenderer creates a doctor report renderer.
func NewDoctorRenderer(theme *Theme) *DoctorRenderer {
	return &DoctorRenderer{theme: theme}
}

// Render renders the full diagnostics report.
func (r *DoctorRenderer) Render(result *media.DiagnosticsResult) string {
	ok := result.GStreamerAvailable && len(result.MissingRequired) == 0

	sections := []string{
		r.renderHeader(ok),
		"",
		r.renderElements(result),
		"",
		r.renderHardware(result),
	}

	if len(result.Warnings) > 0 {
		sections = append(sections, "", r.renderWarnings(result.Warnings))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (r *DoctorRenderer) renderHeader(ok bool) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	statusStyle := r.theme.SuccessStyle
	statusText := "OK"
	if !ok {
		statusStyle = r.theme.WarningStyle
		statusText = "Needs attention"
	}

	title := fmt.Sprintf("%s %s", iconStyle.Render(IconDoctor), r.theme.Title.Render("Doctor"))
	badge := r.theme.BadgeMuted.Render(statusStyle.Render(statusText))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badge)
}

func (r *DoctorRenderer) renderElements(result *media.DiagnosticsResult) string {
	lines := make([]string, 0, len(result.Elements)+1)

	gstIcon := IconCheck
	gstStyle := r.theme.SuccessStyle
	gstText := statusYes
	if !result.GStreamerAvailable {
		gstIcon = IconX
		gstStyle = r.theme.ErrorStyle
		gstText = statusNo
	}
	lines = append(lines, fmt.Sprintf("%s %s %s", gstStyle.Render(gstIcon), r.theme.Subtle.Render("GStreamer"), gstStyle.Render(gstText)))

	for _, el := range result.Elements {
		icon := IconCheck
		style := r.theme.SuccessStyle
		status := "OK"
		if !el.Found {
			icon = IconX
			style = r.theme.ErrorStyle
			status = "Missing"
		}
		name := r.theme.Normal.Render(el.Name)
		badge := r.theme.BadgeMuted.Render(style.Render(status))
		lines = append(lines, fmt.Sprintf("%s %s %s", style.Render(icon), name, badge))
	}

	body := strings.Join(lines, "\n")
	return r.theme.Box.Render(r.theme.BoxHeader.Render(fmt.Sprintf("%s Elements", r.theme.Highlight.Render(IconPackage))) + "\n" + body)
}

func (r *DoctorRenderer) renderHardware(result *media.DiagnosticsResult) string {
	lines := []string{}

	hwIcon := IconWarning
	hwStyle := r.theme.WarningStyle
	hwText := statusNo
	if result.HWAccelAvailable {
		hwIcon = IconCheck
		hwStyle = r.theme.SuccessStyle
		hwText = statusYes
	}
	lines = append(lines, fmt.Sprintf("%s %s %s", hwStyle.Render(hwIcon), r.theme.Subtle.Render("HW decode"), hwStyle.Render(hwText)))

	decoders := []string{
		fmt.Sprintf("%s H.264: %s", r.theme.Subtle.Render("•"), decoderStatus(r.theme, result.H264Decoders)),
		fmt.Sprintf("%s H.265: %s", r.theme.Subtle.Render("•"), decoderStatus(r.theme, result.H265Decoders)),
		fmt.Sprintf("%s AV1: %s", r.theme.Subtle.Render("•"), decoderStatus(r.theme, result.AV1Decoders)),
		fmt.Sprintf("%s VP9: %s", r.theme.Subtle.Render("•"), decoderStatus(r.theme, result.VP9Decoders)),
	}
	lines = append(lines, "", r.theme.Subtle.Render("Decoders"), strings.Join(decoders, "\n"))

	if result.VAAPIAvailable {
		lines = append(lines, "", fmt.Sprintf("%s %s", r.theme.Subtle.Render("VA-API Driver"), r.theme.Normal.Render(result.VAAPIDriver)))
		if strings.TrimSpace(result.VAAPIVersion) != "" {
			lines = append(lines, fmt.Sprintf("%s %s", r.theme.Subtle.Render("VA-API Version"), r.theme.Normal.Render(result.VAAPIVersion)))
		}
	}

	body := strings.Join(lines, "\n")
	return r.theme.Box.Render(r.theme.BoxHeader.Render(fmt.Sprintf("%s Hardware", r.theme.Highlight.Render(IconVideo))) + "\n" + body)
}

func (r *DoctorRenderer) renderWarnings(warnings []string) string {
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, fmt.Sprintf("%s %s", r.theme.WarningStyle.Render(IconWarning), r.theme.Normal.Render(w)))
	}
	return strings.Join(lines, "\n")
}

func decoderStatus(theme *Theme, decoders []string) string {
	if len(decoders) == 0 {
		return theme.WarningStyle.Render("software only")
	}
	return theme.SuccessStyle.Render(strings.Join(decoders, ", "))
}
