package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/careercrawl/internal/model"
)

// Company list column names.
const (
	ColumnCompany    = "Company"
	ColumnWebsite    = "Website"
	ColumnCareerLink = "Career Link"
)

// ReadCompanies reads a company list. Company and Website are required
// columns; Career Link is optional. Column order does not matter and header
// names are matched without regard to case or surrounding spaces. Rows with
// an empty website are skipped.
func ReadCompanies(r io.Reader) ([]model.Company, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := indexColumns(header)
	nameIdx, ok := cols[normalizeColumn(ColumnCompany)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnCompany)
	}
	siteIdx, ok := cols[normalizeColumn(ColumnWebsite)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColumnWebsite)
	}
	linkIdx, hasLink := cols[normalizeColumn(ColumnCareerLink)]

	companies := make([]model.Company, 0)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		website := field(rec, siteIdx)
		if website == "" {
			continue
		}
		c := model.Company{Name: field(rec, nameIdx), Website: website}
		if hasLink {
			c.CareerLink = field(rec, linkIdx)
		}
		companies = append(companies, c)
	}
	return companies, nil
}

// ReadCompaniesFile is ReadCompanies on the file at path.
func ReadCompaniesFile(path string) ([]model.Company, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open company list: %w", err)
	}
	defer f.Close()
	return ReadCompanies(f)
}

// UpdateCareerLinks sets the Career Link cell of every row of the company
// list read from r whose website is a key of links, and writes the whole
// table to w. Every other column and row, including rows without a
// website, is written back unchanged. The Career Link column is appended
// when the header lacks it.
func UpdateCareerLinks(r io.Reader, w io.Writer, links map[string]string) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read company list: %w", err)
	}
	if len(records) == 0 {
		return ErrEmptyFile
	}

	header := records[0]
	cols := indexColumns(header)
	siteIdx, ok := cols[normalizeColumn(ColumnWebsite)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingColumn, ColumnWebsite)
	}
	linkIdx, ok := cols[normalizeColumn(ColumnCareerLink)]
	if !ok {
		linkIdx = len(header)
		records[0] = append(header, ColumnCareerLink)
	}

	for i, rec := range records[1:] {
		link, found := links[field(rec, siteIdx)]
		if !found && linkIdx < len(rec) {
			continue
		}
		for len(rec) <= linkIdx {
			rec = append(rec, "")
		}
		if found {
			rec[linkIdx] = link
		}
		records[i+1] = rec
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write company list: %w", err)
	}
	return nil
}

// UpdateCareerLinksFile is UpdateCareerLinks on the file at path. The new
// content is written to a temporary file first so a crash never leaves a
// truncated list behind. Nothing is written when links is empty.
func UpdateCareerLinksFile(path string, links map[string]string) error {
	if len(links) == 0 {
		return nil
	}

	src, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to open company list: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".companies-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if err := UpdateCareerLinks(src, tmp, links); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write company list: %w", err)
	}
	if info, err := src.Stat(); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm()) //nolint:errcheck // keep the default mode on failure
	}
	_ = src.Close() //nolint:errcheck // read-only
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace company list: %w", err)
	}
	return nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeColumn(h)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
