// Package dedupe tracks recently seen shot keys so a re-sent device message
// is analysed once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize is the number of keys remembered when no size is given.
const DefaultMaxSize = 50_000

// Deduper records seen shot keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so the shot can be resubmitted. Used when a
	// shot was recorded but could not be enqueued.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type slot struct {
	key  string
	live bool
}

// ringDeduper remembers the newest maxSize keys. The ring holds keys in
// insertion order; when it is full the oldest key is overwritten.
// Unrecorded keys leave a hole in the ring that is skipped on eviction.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> ring slot; -1 in unbounded mode
	ring    []slot
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.ring == nil {
		d.seen[key] = -1
		d.size.Add(1)
		return false
	}

	if old := d.ring[d.next]; old.live {
		delete(d.seen, old.key)
		d.size.Add(-1)
	}
	d.ring[d.next] = slot{key: key, live: true}
	d.seen[key] = d.next
	d.next = (d.next + 1) % len(d.ring)
	d.size.Add(1)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if i >= 0 {
		d.ring[i] = slot{}
	}
	d.size.Add(-1)
}

func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}
