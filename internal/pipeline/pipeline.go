package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/careercrawl/internal/model"
)

// Step is one stage of a company crawl.
type Step interface {
	// Do runs the stage and fills in its part of report. A stage whose
	// input is missing (no careers page, no template) records that on the
	// report and returns nil; an error means the crawl of this company
	// cannot go on.
	Do(ctx context.Context, report *model.CompanyReport) error

	// Name identifies the stage in logs and in report.PerformedSteps.
	Name() string
}

// Pipeline runs the stages of one company crawl in order and owns the
// resources opened for that company.
type Pipeline struct {
	steps   []Step
	closers []func() error
	logger  *slog.Logger

	// keepGoing runs the remaining stages after a failed one.
	keepGoing bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. nil keeps slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError runs the later stages even when one fails. The
// error is still recorded on the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.keepGoing = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// AddCloser registers fn to be called by Close.
func (p *Pipeline) AddCloser(fn func() error) {
	p.closers = append(p.closers, fn)
}

// Close calls the registered closers in reverse order and returns their
// joined errors. Later calls do nothing.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

// Execute runs the stages against report.
//
// Cancellation is checked between stages; inside a stage the renderer
// timeouts apply. A cancelled run marks the report as timed out and
// returns the context error. A failed stage is recorded with SetError and,
// unless WithContinueOnError is set, stops the run.
func (p *Pipeline) Execute(ctx context.Context, report *model.CompanyReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("crawl cancelled before step",
				"step", step.Name(),
				"website", report.Website,
				"reason", err,
			)
			report.TimedOut = true
			return err
		}

		start := time.Now()
		p.logger.Info("running step", "step", step.Name(), "website", report.Website)

		err := step.Do(ctx, report)
		if err == nil {
			p.logger.Debug("step done",
				"step", step.Name(),
				"website", report.Website,
				"status", report.Status.String(),
				"elapsed", time.Since(start).Round(time.Millisecond),
			)
			report.PerformedSteps = append(report.PerformedSteps, step.Name())
			continue
		}

		p.logger.Error("step failed",
			"step", step.Name(),
			"website", report.Website,
			"error", err,
		)
		report.SetError(err)
		if ctx.Err() != nil {
			report.TimedOut = true
		}
		if !p.keepGoing {
			return err
		}
	}
	return nil
}

// StepCount returns the number of stages.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the stage names in run order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
