package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/careercrawl/internal/model"
)

func companies(websites ...string) []model.Company {
	out := make([]model.Company, len(websites))
	for i, w := range websites {
		out[i] = model.Company{Name: w, Website: w}
	}
	return out
}

// singleStep returns a factory building a one-step pipeline.
func singleStep(fn func(ctx context.Context, report *model.CompanyReport) error) Factory {
	return func(model.Company) (*Pipeline, error) {
		p := New()
		p.AddStep(&mockStep{name: "step", doFunc: fn})
		return p, nil
	}
}

// TestBatchProcessorOptions tests BatchProcessor option functions.
func TestBatchProcessorOptions(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(singleStep(nil), WithBatchLogger(nil))
	if bp.concurrency != 1 || bp.logger == nil {
		t.Errorf("unexpected defaults: concurrency=%d", bp.concurrency)
	}

	if bp := NewBatchProcessor(singleStep(nil), WithConcurrency(4)); bp.concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", bp.concurrency)
	}
	if bp := NewBatchProcessor(singleStep(nil), WithConcurrency(-2)); bp.concurrency != 1 {
		t.Errorf("expected non-positive concurrency to be ignored, got %d", bp.concurrency)
	}
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("keeps input order", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		bp := NewBatchProcessor(singleStep(func(_ context.Context, _ *model.CompanyReport) error {
			processed.Add(1)
			return nil
		}), WithConcurrency(3))

		input := companies("a.com", "b.com", "c.com", "d.com")
		results, err := bp.ProcessBatch(t.Context(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processed.Load() != 4 {
			t.Errorf("expected 4 processed, got %d", processed.Load())
		}
		for i, r := range results {
			if r.Website != input[i].Website || r.Company != input[i].Name {
				t.Errorf("result %d: expected %s, got %s", i, input[i].Website, r.Website)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		var mu sync.Mutex
		bp := NewBatchProcessor(singleStep(func(_ context.Context, _ *model.CompanyReport) error {
			n := current.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(30 * time.Millisecond)
			current.Add(-1)
			return nil
		}), WithConcurrency(2))

		if _, err := bp.ProcessBatch(t.Context(), companies("1", "2", "3", "4", "5", "6")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency was %d, expected <= 2", peak.Load())
		}
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(singleStep(func(_ context.Context, r *model.CompanyReport) error {
			if r.Website == "broken.com" {
				return errors.New("render failed")
			}
			return nil
		}))

		results, err := bp.ProcessBatch(t.Context(), companies("a.com", "broken.com", "c.com"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[1].Status != model.StatusFailed || results[1].Error == nil {
			t.Errorf("expected failed second report, got %+v", results[1].Summarize())
		}
		if results[2].Status == model.StatusFailed {
			t.Error("third company should not be affected")
		}
	})

	t.Run("factory errors are recorded", func(t *testing.T) {
		t.Parallel()

		errNoBrowser := errors.New("no browser")
		bp := NewBatchProcessor(func(model.Company) (*Pipeline, error) { return nil, errNoBrowser })

		results, err := bp.ProcessBatch(t.Context(), companies("a.com"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(results[0].Error, errNoBrowser) {
			t.Errorf("expected factory error on report, got %v", results[0].Error)
		}
	})

	t.Run("closes every pipeline", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		bp := NewBatchProcessor(func(model.Company) (*Pipeline, error) {
			p := New()
			p.AddCloser(func() error { closed.Add(1); return nil })
			return p, nil
		}, WithConcurrency(2))

		if _, err := bp.ProcessBatch(t.Context(), companies("a.com", "b.com", "c.com")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if closed.Load() != 3 {
			t.Errorf("expected 3 closed pipelines, got %d", closed.Load())
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		var started atomic.Int32
		bp := NewBatchProcessor(singleStep(func(ctx context.Context, _ *model.CompanyReport) error {
			started.Add(1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				return nil
			}
		}), WithConcurrency(2))

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		input := companies("1", "2", "3", "4", "5", "6", "7", "8")
		results, err := bp.ProcessBatch(ctx, input)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if int(started.Load()) >= len(input) {
			t.Error("expected some companies to not start")
		}
		if results[0] == nil || !results[0].TimedOut {
			t.Error("expected the first report to be marked as timed out")
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests callback-based processing.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := make(map[int]string)

	bp := NewBatchProcessor(singleStep(nil), WithConcurrency(3))
	input := companies("a.com", "b.com", "c.com")
	err := bp.ProcessBatchWithCallback(t.Context(), input, func(r *model.CompanyReport, i int) {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = r.Website
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range input {
		if seen[i] != c.Website {
			t.Errorf("index %d: expected %s, got %q", i, c.Website, seen[i])
		}
	}
}
