package audio

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/handiism/wavstream/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify writes the value derived from the recording.
	TagModify

	// TagDoNotModify leaves whatever the server wrote.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// ModifyTags is a master switch. If false, SaveTags does nothing.
	ModifyTags bool

	// Title controls the TIT2 frame ("<name> (part N)").
	Title TagEditAction

	// Album controls the TALB frame (source file name).
	Album TagEditAction

	// TrackNumber controls the TRCK frame (fragment index).
	TrackNumber TagEditAction

	// Year controls the TYER frame (session start year).
	Year TagEditAction

	// Comments controls the COMM frame.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: everything
// derived from the recording is written and comments are cleared.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Title:       TagModify,
		Album:       TagModify,
		TrackNumber: TagModify,
		Year:        TagModify,
		Comments:    TagEmpty,
	}
}

// Tagger writes ID3 tags to saved MP3 fragments. Other containers are
// left untouched since ID3 only applies to MP3.
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// Applies reports whether SaveTags would touch the fragment.
func (t *Tagger) Applies(frag *model.Fragment) bool {
	return t.config.ModifyTags && frag.Extension == KindMP3.Extension()
}

// SaveTags writes ID3 tags to the fragment file on disk.
func (t *Tagger) SaveTags(frag *model.Fragment) error {
	if !t.Applies(frag) {
		return nil
	}

	tag, err := id3v2.Open(frag.Path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags of %s: %w", frag.Path, err)
	}
	defer tag.Close()

	t.updateStringTags(tag, frag)

	return tag.Save()
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, frag *model.Fragment) {
	rec := frag.Recording

	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(frag.Title())
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(rec.Name)
	}

	switch t.config.TrackNumber {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, fmt.Sprintf("%d", frag.Index))
	}

	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, rec.StartedAt.Format("2006"))
	}

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}
