// Package database provides SQLite-based storage for careercrawl.
//
// The CrawlDB stores:
//   - Companies with the careers link found for them
//   - Job postings, one row per job URL
//   - Company reports for run history
//
// Rows are keyed by the website host (lower case, without "www."), so
// "https://www.Acme.com/" and "acme.com" refer to the same company.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// database is a single file in the XDG data directory and the driver needs
// no CGO.
package database
