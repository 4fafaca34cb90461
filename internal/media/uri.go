// Package media provides playback URI handling and GStreamer environment
// diagnostics.
package media

import (
	"errors"
	"fmt"
	neturl "net/url"
	"path/filepath"
	"strings"
)

// ErrEmptyInput is returned when the input string holds no usable location.
var ErrEmptyInput = errors.New("media: empty input")

// IsURI reports whether s is already a usable playback URI. Schemes shorter
// than three characters are not accepted, so Windows-style drive prefixes
// ("C:\...") are treated as paths.
func IsURI(s string) bool {
	u, err := neturl.Parse(s)
	if err != nil {
		return false
	}
	if len(u.Scheme) < 3 {
		return false
	}
	return u.Opaque != "" || u.Host != "" || u.Path != ""
}

// ToPlaybackURI converts user input into a URI the pipeline accepts.
// Valid URIs pass through unchanged; anything else is treated as a
// filesystem path, absolutized against the working directory, and converted
// to a file:// URI.
func ToPlaybackURI(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return "", fmt.Errorf("media: input %q contains invalid characters", input)
	}

	if IsURI(trimmed) {
		return trimmed, nil
	}

	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("media: resolve path %q: %w", input, err)
	}

	u := &neturl.URL{Scheme: "file", Path: abs}
	return u.String(), nil
}
