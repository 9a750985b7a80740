// Package stream provides the session logic for uploading a WAV file to
// the conversion server and playing back the audio it returns.
//
// # Manager
//
// The Manager coordinates one session at a time:
//
//  1. Validate the selected file's type
//  2. Upload it in fixed-size binary chunks followed by a text terminator
//  3. Receive audio fragments until the server closes the connection
//  4. Decode fragments concurrently and release them in arrival order
//  5. Play buffers one after another through an audio.Output
//  6. Archive fragments and write a playlist (optional)
//
// Starting a new session replaces the current one: its connection is
// closed, output is stopped and all of its late events are ignored.
//
// # Basic Usage
//
//	manager := stream.NewManager(settings, output, logger, func(event stream.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	go manager.Run(ctx)
//
//	if _, err := manager.Stream(ctx, "voice.wav"); err != nil {
//	    log.Fatal(err)
//	}
//
//	state, err := manager.Wait(ctx)
//
// # State
//
// State is an immutable value; each transition returns a new one. The
// goroutine running the Manager is its only writer and Snapshot hands out
// copies, so readers never observe a partial update.
//
// Progress is played duration over received duration, where a buffer
// counts as played as soon as it starts. It never decreases within a
// session and is exactly 100 once the queue runs dry after playback began.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	LevelInfo    - General information
//	LevelVerbose - Detailed progress (chunks, fragments)
//	LevelWarning - Non-fatal issues (dropped fragments)
//	LevelError   - Errors (connection failures)
//	LevelSuccess - Playback finished
package stream
