package audio

import "time"

// Queue is a FIFO of decoded buffers awaiting playback.
//
// Queue has value semantics: Push and Pop return a new Queue and never
// modify the receiver, so a copy held in a snapshot stays valid.
type Queue struct {
	items []*Buffer
}

// Push returns the queue with b appended at the tail.
func (q Queue) Push(b *Buffer) Queue {
	items := make([]*Buffer, len(q.items), len(q.items)+1)
	copy(items, q.items)
	return Queue{items: append(items, b)}
}

// Pop returns the head buffer and the remaining queue. ok is false when the
// queue is empty.
func (q Queue) Pop() (rest Queue, head *Buffer, ok bool) {
	if len(q.items) == 0 {
		return q, nil, false
	}
	return Queue{items: q.items[1:]}, q.items[0], true
}

func (q Queue) Len() int {
	return len(q.items)
}

// Duration is the summed length of every queued buffer.
func (q Queue) Duration() time.Duration {
	var d time.Duration
	for _, b := range q.items {
		d += b.Duration
	}
	return d
}

// Indexes lists the arrival indexes in queue order.
func (q Queue) Indexes() []int {
	idx := make([]int, len(q.items))
	for i, b := range q.items {
		idx[i] = b.Index
	}
	return idx
}
