//go:build !((linux && cgo) || windows || darwin)

package audio

// AudioAvailable indicates whether device playback is supported in this build.
// Device output requires cgo on Linux.
const AudioAvailable = false

// NewSpeakerOutput falls back to a silent clock output when no audio
// device backend is compiled in.
func NewSpeakerOutput(sampleRate int) (Output, error) {
	return NewClockOutput(), nil
}
