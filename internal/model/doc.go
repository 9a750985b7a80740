// Package model defines the core data structures used throughout
// wavstream.
//
// # AudioDetails
//
// AudioDetails is the display snapshot of the file picked for upload:
//
//	details := model.NewAudioDetails("voice.wav", 1572864, "audio/wav")
//	fmt.Println(details.SizeMiB())   // "1.50"
//	fmt.Println(details.Extension)   // "wav"
//
// # Chunking
//
// ChunkPlan and Chunks describe how a file is split into upload frames:
//
//	model.ChunkPlan(1548288, 512*1024) // [524288 524288 499712]
//
// # Recording and Fragment
//
// Recording and Fragment compute where returned audio is archived when
// fragment saving is enabled:
//
//	rec := model.NewRecording("voice.wav", sessionID, time.Now(), cfg)
//	frag := model.NewFragment(rec, 1, 2.5, ".flac", cfg)
//	fmt.Println(frag.Path)
//
// Available placeholders: {name}, {session}, {index}, {year}, {month}, {day}
package model
