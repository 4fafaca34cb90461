package playback

// Flag selects playbin feature bits.
type Flag int

const (
	// FlagVideo enables video rendering.
	FlagVideo Flag = 1 << 0
	// FlagAudio enables audio rendering.
	FlagAudio Flag = 1 << 1
	// FlagText enables subtitle rendering.
	FlagText Flag = 1 << 2
	// FlagSoftVolume uses a software volume element.
	FlagSoftVolume Flag = 1 << 4
	// FlagNativeVideo requests native video formats from the decoder,
	// keeping software postprocessing out of the path to the GL sink.
	FlagNativeVideo Flag = 1 << 6
)

// DefaultFlags is the feature set the player runs with: video, audio and
// subtitles on, software volume, native video formats.
const DefaultFlags = FlagVideo | FlagAudio | FlagText | FlagSoftVolume | FlagNativeVideo
