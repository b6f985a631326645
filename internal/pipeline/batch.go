package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/careercrawl/internal/model"
)

// Factory builds the pipeline for one company. The returned pipeline owns
// its resources and is closed by the caller after Execute.
type Factory func(c model.Company) (*Pipeline, error)

// BatchProcessor handles concurrent processing of multiple companies.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-company execution
// 2. Every company needs its own renderer, built by the factory
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// factory creates a new pipeline for each company.
	factory Factory

	// concurrency is the maximum number of concurrent companies.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports.
	// Access is synchronized via mutex.
	results []*model.CompanyReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent companies.
// Default is 1: companies are crawled one after another.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The factory is called for each company to create a fresh pipeline. This
// keeps renderer and visited state from leaking between companies and
// allows per-site configuration.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: 1,
		results:     make([]*model.CompanyReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple companies concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Returns all reports in input order, including failed ones. Companies not
// started before cancellation have a nil report. The error is non-nil only
// when the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, companies []model.Company) ([]*model.CompanyReport, error) {
	bp.logger.Info("starting batch processing",
		"total_companies", len(companies),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.mu.Lock()
	bp.results = make([]*model.CompanyReport, len(companies))
	bp.mu.Unlock()

	err := bp.run(ctx, companies, func(report *model.CompanyReport, i int) {
		bp.mu.Lock()
		bp.results[i] = report
		bp.mu.Unlock()
	})

	bp.logger.Info("batch processing complete",
		"total_companies", len(companies),
		"elapsed", time.Since(startTime),
	)

	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.results, err
}

// ProcessBatchWithCallback crawls multiple companies and calls a callback
// for each completed report. This is useful for streaming results to CSV
// files and the database as they arrive.
//
// The callback receives the report and the index of the company in the
// original slice. The callback is called from the goroutine that completed
// the crawl, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	companies []model.Company,
	callback func(report *model.CompanyReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_companies", len(companies),
		"concurrency", bp.concurrency,
	)
	return bp.run(ctx, companies, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, companies []model.Company, done func(*model.CompanyReport, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, company := range companies {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling company",
				"company", company.Name,
				"website", company.Website,
				"index", i+1,
				"total", len(companies),
			)

			done(bp.processOne(ctx, company), i)
			// Failures are recorded in the report; other companies go on.
			return nil
		})
	}

	return g.Wait()
}

func (bp *BatchProcessor) processOne(ctx context.Context, company model.Company) *model.CompanyReport {
	report := model.NewCompanyReport(company)

	p, err := bp.factory(company)
	if err != nil {
		bp.logger.Warn("failed to build pipeline", "website", company.Website, "error", err)
		report.SetError(err)
		return report
	}
	defer func() {
		if err := p.Close(); err != nil {
			bp.logger.Debug("failed to release pipeline resources", "website", company.Website, "error", err)
		}
	}()

	if err := p.Execute(ctx, report); err != nil {
		bp.logger.Warn("crawl failed",
			"website", company.Website,
			"error", err,
		)
		return report
	}

	bp.logger.Info("crawl completed",
		"website", company.Website,
		"status", report.Status.String(),
		"jobs", len(report.Jobs),
	)
	return report
}
