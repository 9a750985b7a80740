package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/handiism/wavstream/internal/audio"
	"github.com/handiism/wavstream/internal/config"
	ioutils "github.com/handiism/wavstream/internal/io"
	"github.com/handiism/wavstream/internal/model"
)

// recorder archives the fragments of one session to disk and writes a
// playlist once the session settles.
type recorder struct {
	cfg      *model.RecordingConfig
	rec      *model.Recording
	tagger   *audio.Tagger
	playlist *audio.PlaylistCreator
}

func newRecorder(settings *config.Settings, sourceName, sessionID string, startedAt time.Time) *recorder {
	cfg := settings.ToRecordingConfig()

	tags := audio.DefaultTagConfig()
	tags.ModifyTags = settings.ModifyTags

	return &recorder{
		cfg:      cfg,
		rec:      model.NewRecording(sourceName, sessionID, startedAt, cfg),
		tagger:   audio.NewTagger(tags),
		playlist: audio.NewPlaylistCreator(audio.PlaylistFormatFor(cfg.PlaylistFormat), settings.M3UExtended),
	}
}

// Save writes the raw fragment bytes and tags the file when applicable.
// A tagging failure is returned but the fragment stays recorded.
func (r *recorder) Save(ctx context.Context, buf *audio.Buffer) (*model.Fragment, error) {
	frag := model.NewFragment(r.rec, buf.Index, buf.Duration.Seconds(), buf.Kind.Extension(), r.cfg)
	if err := ioutils.WriteFile(ctx, frag.Path, buf.Data); err != nil {
		return nil, fmt.Errorf("save fragment %d: %w", buf.Index, err)
	}
	r.rec.Fragments = append(r.rec.Fragments, frag)

	if r.tagger.Applies(frag) {
		if err := r.tagger.SaveTags(frag); err != nil {
			return frag, fmt.Errorf("tag fragment %d: %w", buf.Index, err)
		}
	}
	return frag, nil
}

// Finish writes the playlist. It returns an empty path when nothing was
// saved.
func (r *recorder) Finish(ctx context.Context) (string, error) {
	if len(r.rec.Fragments) == 0 {
		return "", nil
	}
	content := r.playlist.CreatePlaylist(r.rec)
	if err := ioutils.WriteFile(ctx, r.rec.PlaylistPath, []byte(content)); err != nil {
		return "", fmt.Errorf("write playlist: %w", err)
	}
	return r.rec.PlaylistPath, nil
}
