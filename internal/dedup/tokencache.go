package dedup

// DefaultThreshold is the overlap ratio at or above which two pages are
// near duplicates.
const DefaultThreshold = 0.9

// Frequencies counts the occurrences of each token.
func Frequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}

// Overlap returns the number of distinct tokens present in both histograms
// divided by the distinct-token count of the smaller one.
// The second result is false when either histogram is empty, in which case
// no similarity decision is possible.
//
// The smaller histogram is iterated, so a comparison costs O(min(len(a), len(b))).
func Overlap(a, b map[string]int) (float64, bool) {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	if len(small) == 0 {
		return 0, false
	}

	shared := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small)), true
}

// TokenCache is a bounded sequence of token histograms with first-in
// first-out eviction.
type TokenCache struct {
	capacity   int
	histograms []map[string]int
}

// NewTokenCache creates a TokenCache holding at most capacity histograms.
// A non-positive capacity falls back to DefaultCapacity.
func NewTokenCache(capacity int) *TokenCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &TokenCache{
		capacity:   capacity,
		histograms: make([]map[string]int, 0, capacity+1),
	}
}

// NearDuplicate reports whether freq overlaps any cached histogram by at
// least threshold.
func (c *TokenCache) NearDuplicate(freq map[string]int, threshold float64) bool {
	for _, cached := range c.histograms {
		overlap, ok := Overlap(freq, cached)
		if !ok {
			continue
		}
		if overlap >= threshold {
			return true
		}
	}
	return false
}

// Add appends freq, evicting the oldest histogram past capacity.
func (c *TokenCache) Add(freq map[string]int) {
	c.histograms = append(c.histograms, freq)
	if len(c.histograms) > c.capacity {
		copy(c.histograms, c.histograms[1:])
		c.histograms[len(c.histograms)-1] = nil
		c.histograms = c.histograms[:len(c.histograms)-1]
	}
}

// Len returns the number of cached histograms.
func (c *TokenCache) Len() int {
	return len(c.histograms)
}
