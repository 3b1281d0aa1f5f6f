// Package log builds the slog loggers used by domaincrawl.
//
// Every logger returned by New wraps its handler in a SecureHandler, which
// masks sensitive values before they are written:
//   - HTTP credential headers (Authorization, Cookie, X-Api-Key)
//   - values that look like bearer tokens, JWTs or private keys
//   - session, ticket and token query parameters inside logged URLs
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("fetched", "url", "https://www.ics.uci.edu/?sid=abc")
//	// url=https://www.ics.uci.edu/?sid=%2A%2A%2AREDACTED%2A%2A%2A
package log
