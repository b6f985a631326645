// Package log provides the slog setup used by careercrawl, with automatic
// masking of credentials that site configurations carry.
//
// Site configurations may hold cookies and custom headers (consent cookies,
// bearer tokens for job board APIs), and job board URLs frequently carry
// session identifiers in their query strings. The SecureHandler removes these
// from every record before it reaches the underlying handler:
//   - attribute keys naming credentials (cookie, authorization, token, ...)
//   - values that look like bearer, basic or JWT credentials
//   - header maps logged as a single attribute
//   - sensitive query parameters inside URL values
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("rendering page",
//	    "url", "https://boards.example.com/acme?sid=abc", // sid value masked
//	    "cookie", "consent=yes",                          // masked
//	)
package log
