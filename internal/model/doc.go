// Package model defines the data structures shared by the crawler, the
// pipeline, persistence and report writers.
//
// The main type is CompanyReport, which accumulates everything learned about
// one company during a run: where its careers page is, which listing
// template was inferred, which job URLs were extracted and the postings
// read from them.
//
// Design decision: We keep these types free of behavior beyond small helpers
// so that they can be serialized to JSON for reports and the database
// without custom marshalers.
package model
