package fetch

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" form with a port between 1 and 65535.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrRequest is returned when a request could not be completed. The
	// underlying transport error is wrapped alongside it.
	ErrRequest = errors.New("request failed")
)
