package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"
	"github.com/handiism/wavstream/internal/model"
)

func TestTagger_Applies(t *testing.T) {
	cfg := &model.RecordingConfig{RecordingsPath: "/rec", FragmentFileNameFormat: "{index}"}
	rec := model.NewRecording("voice.wav", "s", time.Now(), cfg)

	tagger := NewTagger(nil)
	if !tagger.Applies(model.NewFragment(rec, 1, 1, ".mp3", cfg)) {
		t.Error("mp3 fragments should be tagged")
	}
	if tagger.Applies(model.NewFragment(rec, 1, 1, ".flac", cfg)) {
		t.Error("flac fragments should not be tagged")
	}

	off := NewTagger(&TagConfig{ModifyTags: false})
	if off.Applies(model.NewFragment(rec, 1, 1, ".mp3", cfg)) {
		t.Error("ModifyTags=false should disable tagging")
	}
}

func TestTagger_SaveTags(t *testing.T) {
	dir := t.TempDir()
	cfg := &model.RecordingConfig{RecordingsPath: dir, FragmentFileNameFormat: "{name}-{index}"}
	started := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := model.NewRecording("voice.wav", "s", started, cfg)
	frag := model.NewFragment(rec, 2, 1, ".mp3", cfg)

	body := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 64)...)
	if err := os.WriteFile(frag.Path, body, 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewTagger(DefaultTagConfig()).SaveTags(frag); err != nil {
		t.Fatalf("SaveTags() error = %v", err)
	}

	tag, err := id3v2.Open(filepath.Join(dir, "voice-002.mp3"), id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Title() != "voice (part 2)" {
		t.Errorf("Title = %q", tag.Title())
	}
	if tag.Album() != "voice" {
		t.Errorf("Album = %q", tag.Album())
	}
}

func TestTagger_SkipsNonMP3(t *testing.T) {
	cfg := &model.RecordingConfig{RecordingsPath: t.TempDir(), FragmentFileNameFormat: "{index}"}
	rec := model.NewRecording("voice.wav", "s", time.Now(), cfg)
	frag := model.NewFragment(rec, 1, 1, ".flac", cfg)

	// The file does not even exist; a skipped fragment must not be opened.
	if err := NewTagger(nil).SaveTags(frag); err != nil {
		t.Errorf("SaveTags() error = %v", err)
	}
}
