package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/careercrawl/internal/model"
)

// JobColumns is the header of the jobs file.
var JobColumns = []string{"Website", "Job URL", "Job Title", "Job Description"}

const jobTitleColumn = "Job Title"

// JobWriter appends postings to a jobs CSV file. A posting whose title was
// already written, in this run or an earlier one, is skipped. It is safe for
// concurrent use.
type JobWriter struct {
	mu     sync.Mutex
	file   *os.File
	csv    *csv.Writer
	titles map[string]struct{}
}

// OpenJobWriter opens path for appending, creating it with a header when it
// does not exist or is empty. Titles already in the file are loaded so they
// are not written again.
func OpenJobWriter(path string) (*JobWriter, error) {
	path = filepath.Clean(path)
	titles, err := readTitles(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to stat jobs file: %w", err)
	}

	w := &JobWriter{file: f, csv: csv.NewWriter(f), titles: titles}
	if info.Size() == 0 {
		if err := w.csv.Write(JobColumns); err != nil {
			_ = f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			_ = f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	return w, nil
}

// Write appends job unless its title was written before. It reports whether
// a row was written. The row is flushed before Write returns.
func (w *JobWriter) Write(job model.Job) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, dup := w.titles[job.Title]; dup {
		return false, nil
	}
	if err := w.csv.Write([]string{job.Website, job.URL, job.Title, job.Description}); err != nil {
		return false, err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return false, err
	}
	w.titles[job.Title] = struct{}{}
	return true, nil
}

// WriteAll writes every job and returns how many rows were added.
func (w *JobWriter) WriteAll(jobs []model.Job) (int, error) {
	n := 0
	for _, j := range jobs {
		ok, err := w.Write(j)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Close closes the file.
func (w *JobWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.csv.Flush()
	return errors.Join(w.csv.Error(), w.file.Close())
}

// readTitles returns the Job Title values of an existing jobs file. A
// missing or empty file yields an empty set.
func readTitles(path string) (map[string]struct{}, error) {
	titles := make(map[string]struct{})

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return titles, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return titles, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs header: %w", err)
	}
	idx, ok := indexColumns(header)[normalizeColumn(jobTitleColumn)]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, jobTitleColumn, path)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return titles, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read jobs file: %w", err)
		}
		if idx < len(rec) {
			titles[rec[idx]] = struct{}{}
		}
	}
}
