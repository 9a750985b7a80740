package audio

import (
	"strings"
	"testing"
	"time"

	"github.com/handiism/wavstream/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	rec := createTestRecording()
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist(rec)

	if !strings.Contains(content, "voice-001.flac") {
		t.Error("M3U should contain fragment filename")
	}
	if strings.Contains(content, "#EXTINF") {
		t.Error("plain M3U should not contain #EXTINF")
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	rec := createTestRecording()
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist(rec)

	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:2,voice (part 1)") {
		t.Errorf("Extended M3U should contain rounded duration and title, got:\n%s", content)
	}
	if strings.Index(content, "voice-001.flac") > strings.Index(content, "voice-002.flac") {
		t.Error("fragments should be listed in playback order")
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	rec := createTestRecording()
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist(rec)

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File2=voice-002.flac") {
		t.Error("PLS should contain File2=")
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Error("PLS should contain NumberOfEntries")
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	rec := createTestRecording()
	content := NewPlaylistCreator(FormatWPL, false).CreatePlaylist(rec)

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<media src=") {
		t.Error("WPL should contain media elements")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	rec := createTestRecording()
	content := NewPlaylistCreator(FormatZPL, false).CreatePlaylist(rec)

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `duration="1500"`) {
		t.Error("ZPL should contain duration in milliseconds")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	cfg := &model.RecordingConfig{
		RecordingsPath:         "/rec",
		FragmentFileNameFormat: "part-{index}",
		PlaylistFileNameFormat: "{name}",
	}
	rec := model.NewRecording("Rock & <Roll>.wav", "s", time.Now(), cfg)
	rec.Fragments = append(rec.Fragments, model.NewFragment(rec, 1, 1, ".flac", cfg))

	content := NewPlaylistCreator(FormatWPL, false).CreatePlaylist(rec)

	if !strings.Contains(content, "Rock &amp; &lt;Roll&gt;") {
		t.Errorf("WPL should escape the title, got:\n%s", content)
	}
}

func TestPlaylistFormatFor(t *testing.T) {
	tests := []struct {
		in   model.PlaylistFormat
		want PlaylistFormat
	}{
		{model.PlaylistFormatM3U, FormatM3U},
		{model.PlaylistFormatPLS, FormatPLS},
		{model.PlaylistFormatWPL, FormatWPL},
		{model.PlaylistFormatZPL, FormatZPL},
	}
	for _, tt := range tests {
		if got := PlaylistFormatFor(tt.in); got != tt.want {
			t.Errorf("PlaylistFormatFor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func createTestRecording() *model.Recording {
	cfg := &model.RecordingConfig{
		RecordingsPath:         "/rec/{name}",
		FragmentFileNameFormat: "{name}-{index}",
		PlaylistFileNameFormat: "{name}",
		PlaylistFormat:         model.PlaylistFormatM3U,
	}

	rec := model.NewRecording("voice.wav", "session", time.Now(), cfg)
	rec.Fragments = []*model.Fragment{
		model.NewFragment(rec, 1, 1.5, ".flac", cfg),
		model.NewFragment(rec, 2, 3.0, ".flac", cfg),
	}
	return rec
}
