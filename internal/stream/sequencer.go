package stream

import "github.com/handiism/wavstream/internal/audio"

// decodeResult is the outcome of decoding the fragment that arrived at
// position index.
type decodeResult struct {
	index int
	buf   *audio.Buffer
	err   error
}

// sequencer releases decode results in arrival order, whatever order the
// decodes complete in. Failed decodes are released too so they never
// block later fragments.
type sequencer struct {
	next    int
	waiting map[int]decodeResult
}

func newSequencer() *sequencer {
	return &sequencer{next: 1, waiting: make(map[int]decodeResult)}
}

// Add stores r and returns every result that is now in order.
func (s *sequencer) Add(r decodeResult) []decodeResult {
	if r.index < s.next {
		return nil
	}
	s.waiting[r.index] = r

	var ready []decodeResult
	for {
		next, ok := s.waiting[s.next]
		if !ok {
			break
		}
		delete(s.waiting, s.next)
		ready = append(ready, next)
		s.next++
	}
	return ready
}

// Waiting is the number of results held back by a missing earlier one.
func (s *sequencer) Waiting() int {
	return len(s.waiting)
}
