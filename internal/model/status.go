package model

// Status summarizes how far the crawl of one company got.
//
// Design decision: We use iota-based constants ordered by progress so that
// "did we get at least this far" is a plain comparison. String() gives the
// form used in reports and the database.
type Status int

const (
	// StatusPending means no step has run yet.
	StatusPending Status = iota

	// StatusFailed means a step returned an error.
	StatusFailed

	// StatusNoCareerPage means discovery found no careers page.
	StatusNoCareerPage

	// StatusNoTemplate means the listing page had no candidate containers.
	StatusNoTemplate

	// StatusNoJobs means a template was found but no navigable links survived
	// filtering.
	StatusNoJobs

	// StatusJobsFound means at least one job URL was extracted.
	StatusJobsFound
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusFailed:
		return "FAILED"
	case StatusNoCareerPage:
		return "NO_CAREER_PAGE"
	case StatusNoTemplate:
		return "NO_TEMPLATE"
	case StatusNoJobs:
		return "NO_JOBS"
	case StatusJobsFound:
		return "JOBS_FOUND"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler so JSON reports carry the
// name instead of the number.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// StatusPending.
func (s *Status) UnmarshalText(text []byte) error {
	for c := StatusPending; c <= StatusJobsFound; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	*s = StatusPending
	return nil
}
