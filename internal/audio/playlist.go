package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/wavstream/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// PlaylistFormatFor maps the model playlist format to the writer format.
func PlaylistFormatFor(pf model.PlaylistFormat) PlaylistFormat {
	switch pf {
	case model.PlaylistFormatPLS:
		return FormatPLS
	case model.PlaylistFormatWPL:
		return FormatWPL
	case model.PlaylistFormatZPL:
		return FormatZPL
	default:
		return FormatM3U
	}
}

// PlaylistCreator generates a playlist listing the saved fragments of a
// recording, in playback order.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(rec)
//	os.WriteFile(rec.PlaylistPath, []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:3,voice (part 1)
//	// voice-001.flac
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only applies to M3U output.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for a recording.
//
// Fragment paths are relative (just the file name), assuming the playlist
// is written next to the fragments.
func (p *PlaylistCreator) CreatePlaylist(rec *model.Recording) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(rec)
	case FormatWPL:
		return p.createWPL(rec)
	case FormatZPL:
		return p.createZPL(rec)
	default:
		return p.createM3U(rec)
	}
}

func (p *PlaylistCreator) createM3U(rec *model.Recording) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, frag := range rec.Fragments {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", int(frag.Duration+0.5), frag.Title()))
		}
		sb.WriteString(filepath.Base(frag.Path) + "\n")
	}

	return sb.String()
}

func (p *PlaylistCreator) createPLS(rec *model.Recording) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, frag := range rec.Fragments {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, filepath.Base(frag.Path)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, frag.Title()))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, int(frag.Duration+0.5)))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(rec.Fragments)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(rec *model.Recording) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(rec.Name)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, frag := range rec.Fragments {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(filepath.Base(frag.Path))))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

func (p *PlaylistCreator) createZPL(rec *model.Recording) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(rec.Name)))
	sb.WriteString("    <meta name=\"Generator\" content=\"wavstream\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(rec.Fragments)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, frag := range rec.Fragments {
		duration := time.Duration(frag.Duration * float64(time.Second))
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.Base(frag.Path)),
			escapeXML(rec.Name),
			escapeXML(frag.Title()),
			duration.Milliseconds()))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
