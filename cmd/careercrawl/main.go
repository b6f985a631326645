// Package main provides the entry point for the careercrawl CLI.
//
// careercrawl finds the careers page of each company in a list, infers the
// repeated layout of its job listing and collects the job postings it links.
//
// Usage:
//
//	careercrawl scan acme.com
//	careercrawl scan --list companies.csv --jobs-out jobs.csv
//
// See --help for all available options.
package main

func main() {
	Execute()
}
