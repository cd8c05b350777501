// Package dedupe tracks recently seen webhook deliveries so that retried
// callbacks are acknowledged without being handled twice.
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

const defaultMaxSize = 4096

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it if
	// not. It returns true for a duplicate.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a later delivery is handled again.
	Unrecord(ctx context.Context, key string)

	Size() int
}

// Key derives a dedupe key from a raw request body. The host platform sends
// no delivery id, so identical bodies are treated as the same delivery.
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type slot struct {
	key  string
	used bool
}

// inMemoryDeduper keeps at most maxSize keys and evicts the oldest first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> slot in ring
	ring    []slot
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int, d.maxSize)
	d.ring = make([]slot, d.maxSize)
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if old := d.ring[d.next]; old.used {
		delete(d.seen, old.key)
	}
	d.ring[d.next] = slot{key: key, used: true}
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i, ok := d.seen[key]; ok {
		delete(d.seen, key)
		d.ring[i] = slot{}
	}
}

// Size returns the number of remembered keys.
func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
