// Package dedupe tracks match ids already folded into a roster so that
// overlapping input files do not count a match twice.
package dedupe

import "container/list"

// Deduper records seen match IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(id string) bool

	// Unrecord removes an ID from the seen set, allowing it to be processed
	// again. Used when a recorded match was then rejected by validation.
	Unrecord(id string)

	Size() int
}

// fifoDeduper implements Deduper with a map over an insertion-ordered list.
// For bounded mode (maxSize > 0): the oldest id is evicted first.
// For unbounded mode (maxSize <= 0): ids are never evicted.
type fifoDeduper struct {
	seen    map[string]*list.Element
	order   *list.List // front is the oldest id
	maxSize int
}

// NewDeduper creates a new deduper with configuration options.
func NewDeduper(opts ...Option) Deduper {
	d := &fifoDeduper{
		maxSize: 50000, // default max size
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *fifoDeduper) SeenAndRecord(id string) bool {
	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[id] = d.order.PushBack(id)
	return false
}

func (d *fifoDeduper) Unrecord(id string) {
	if e, exists := d.seen[id]; exists {
		d.order.Remove(e)
		delete(d.seen, id)
	}
}

// evictOldest removes the least recently added entry.
func (d *fifoDeduper) evictOldest() {
	if e := d.order.Front(); e != nil {
		d.order.Remove(e)
		delete(d.seen, e.Value.(string))
	}
}

// Size returns the current number of entries in the deduper.
func (d *fifoDeduper) Size() int {
	return len(d.seen)
}
