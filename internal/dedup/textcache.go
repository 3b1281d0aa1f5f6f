package dedup

import "github.com/cespare/xxhash/v2"

// DefaultCapacity is the default number of entries kept by each cache.
const DefaultCapacity = 100

type textEntry struct {
	digest uint64
	text   string
}

// TextCache is a bounded set of page texts with first-in first-out eviction.
// Membership is answered through an xxhash index; digest collisions are
// resolved by comparing the full text.
type TextCache struct {
	capacity int
	entries  []textEntry
	index    map[uint64]int
}

// NewTextCache creates a TextCache holding at most capacity texts.
// A non-positive capacity falls back to DefaultCapacity.
func NewTextCache(capacity int) *TextCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &TextCache{
		capacity: capacity,
		entries:  make([]textEntry, 0, capacity+1),
		index:    make(map[uint64]int, capacity),
	}
}

// Contains reports whether text is currently cached.
func (c *TextCache) Contains(text string) bool {
	return c.contains(xxhash.Sum64String(text), text)
}

// Add inserts text and reports whether it was absent.
// When the cache grows past its capacity the oldest text is evicted.
func (c *TextCache) Add(text string) bool {
	digest := xxhash.Sum64String(text)
	if c.contains(digest, text) {
		return false
	}

	c.entries = append(c.entries, textEntry{digest: digest, text: text})
	c.index[digest]++

	if len(c.entries) > c.capacity {
		c.evictOldest()
	}
	return true
}

// Len returns the number of cached texts.
func (c *TextCache) Len() int {
	return len(c.entries)
}

func (c *TextCache) contains(digest uint64, text string) bool {
	if c.index[digest] == 0 {
		return false
	}
	for _, e := range c.entries {
		if e.digest == digest && e.text == text {
			return true
		}
	}
	return false
}

func (c *TextCache) evictOldest() {
	oldest := c.entries[0]
	copy(c.entries, c.entries[1:])
	c.entries[len(c.entries)-1] = textEntry{}
	c.entries = c.entries[:len(c.entries)-1]

	if c.index[oldest.digest] <= 1 {
		delete(c.index, oldest.digest)
	} else {
		c.index[oldest.digest]--
	}
}
