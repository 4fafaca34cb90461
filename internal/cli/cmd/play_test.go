package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"localFile", "file:///home/user/movies/film.mkv", "film.mkv"},
		{"escapedSpaces", "file:///tmp/My%20Movie.mp4", "My Movie.mp4"},
		{"httpStream", "https://example.com/live/stream.m3u8", "stream.m3u8"},
		{"bareHost", "https://example.com/", "https://example.com/"},
		{"noPath", "https://example.com", "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayTitle(tt.uri))
		})
	}
}
