// Package audio decodes and plays the fragments returned by the stream
// server, and archives them when recording is enabled.
//
// # Decoding
//
// Decode sniffs the container (FLAC, WAV or MP3) and decodes a whole
// fragment into memory so its exact duration is known before playback:
//
//	buf, err := audio.Decode(1, data)
//	fmt.Println(buf.Kind, buf.Duration)
//
// # Playback
//
// An Output plays one buffer per voice and reports when it ends:
//
//	out, err := audio.NewSpeakerOutput(44100)
//	out.Play(buf, func() { /* voice finished */ })
//
// NewClockOutput is a silent Output that only keeps time; it is used when
// playback is muted and in builds without an audio backend.
//
// Queue is the FIFO of buffers waiting for the device.
//
// # Recording
//
// PlaylistCreator writes M3U, PLS, WPL or ZPL playlists for a saved
// recording, and Tagger writes ID3 tags to saved MP3 fragments.
package audio
