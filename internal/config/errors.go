package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoSeeds is returned when there is no URL to start crawling from.
	ErrNoSeeds = errors.New("no seed URLs specified")

	// ErrInvalidSeed is returned when a seed is not an absolute http(s) URL.
	ErrInvalidSeed = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrNoDomains is returned when the allowed-domain list is empty.
	ErrNoDomains = errors.New("no allowed domains specified")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidPolitenessDelay is returned when the politeness delay is negative.
	ErrInvalidPolitenessDelay = errors.New("invalid politeness delay: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidWordBounds is returned when the word bounds are negative or inverted.
	ErrInvalidWordBounds = errors.New("invalid word bounds: need 0 <= min <= max and max > 0")

	// ErrInvalidCacheSize is returned when a duplicate cache capacity is not positive.
	ErrInvalidCacheSize = errors.New("invalid cache size: must be positive")

	// ErrInvalidThreshold is returned when the similarity threshold is outside (0, 1].
	ErrInvalidThreshold = errors.New("invalid similarity threshold: must be in (0, 1]")

	// ErrInvalidTopWords is returned when the word-list length is not positive.
	ErrInvalidTopWords = errors.New("invalid top words: must be positive")

	// ErrNoReportFile is returned when no report path is configured.
	ErrNoReportFile = errors.New("no report file specified")
)
