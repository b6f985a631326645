// Package pipeline runs the crawl of one company as a sequence of steps and
// fans out across companies in batch mode.
//
// The default pipeline has four steps, each filling part of a
// model.CompanyReport:
//
//  1. discover: website → careers page (cached link, site config, or the
//     discovery cascade)
//  2. job_board: careers page → job board link, falling back to the careers
//     page itself
//  3. listing: template inference and job link extraction
//  4. postings: title and description of every job page
//
// Design decision: We keep the pipeline pattern for the crawl because:
// 1. Each stage can stop the run early and leave a readable status
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running renders
//
// Batch processing runs one pipeline per company with errgroup and a
// concurrency limit. Every pipeline owns its renderer.
package pipeline
