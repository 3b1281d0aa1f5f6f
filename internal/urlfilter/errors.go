package urlfilter

import "errors"

// ErrMalformedURL is returned when a string cannot be parsed as a URL.
// Callers receive it wrapped with the offending input; use errors.Is to test for it.
var ErrMalformedURL = errors.New("malformed URL")

// ErrInvalidPattern is returned when an ignore pattern is not a valid glob.
var ErrInvalidPattern = errors.New("invalid ignore pattern")
