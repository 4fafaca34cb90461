package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFlags(t *testing.T) {
	t.Parallel()

	// video | audio | text | soft-volume | native-video
	assert.Equal(t, 0x57, int(DefaultFlags))
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "null", StateNull.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "unknown", State(99).String())
}
