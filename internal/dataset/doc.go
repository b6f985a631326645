// Package dataset reads the company list and writes the jobs file.
//
// Both files are CSV with a header row. The company list has the columns
// Company, Website and, optionally, Career Link; discovered careers links
// are written back into it so later runs skip discovery. The jobs file has
// the columns Website, Job URL, Job Title and Job Description and is only
// ever appended to.
package dataset
