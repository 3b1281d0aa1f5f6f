package model

import "time"

// URLRecord is the persisted frontier state of one URL.
type URLRecord struct {
	// URL is the canonical URL.
	URL string `json:"url"`

	// Completed is true once a worker has finished processing the URL.
	Completed bool `json:"completed"`

	// AddedAt is when the URL was first added to the frontier.
	AddedAt time.Time `json:"added_at"`
}
