package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/drawtopia/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents processed at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor runs one pipeline per document concurrently.
type BatchProcessor struct {
	// pipelineFactory creates the pipeline for each document so that no
	// step state is shared between documents.
	pipelineFactory func() *Pipeline

	// jobFactory creates the job, and with it a fresh session, for a
	// document.
	jobFactory func(document string) *Job

	concurrency int
	logger      *slog.Logger

	// results is indexed like the input documents.
	results []*model.MarkupReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger for batch-level events.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of documents in flight.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, jobFactory func(document string) *Job, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		jobFactory:      jobFactory,
		concurrency:     DefaultConcurrency,
		results:         make([]*model.MarkupReport, 0),
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch annotates every document and returns the reports in input
// order. A failing document does not stop the others; its errors are in
// its report. The returned error is non-nil only when ctx is cancelled,
// and reports of documents that never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, documents []string) ([]*model.MarkupReport, error) {
	bp.logger.Info("starting batch",
		"documents", len(documents),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	bp.results = make([]*model.MarkupReport, len(documents))
	err := bp.run(ctx, documents, func(report *model.MarkupReport, index int) {
		bp.mu.Lock()
		bp.results[index] = report
		bp.mu.Unlock()
	})

	bp.logger.Info("batch complete",
		"documents", len(documents),
		"elapsed", time.Since(start),
	)
	return bp.results, err
}

// ProcessBatchWithCallback annotates every document and calls callback
// with each finished report and its index. callback runs on the worker
// goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	documents []string,
	callback func(report *model.MarkupReport, index int),
) error {
	bp.logger.Info("starting batch with callback",
		"documents", len(documents),
		"concurrency", bp.concurrency,
	)
	return bp.run(ctx, documents, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, documents []string, done func(*model.MarkupReport, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, document := range documents {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("annotating document",
				"document", document,
				"index", i+1,
				"total", len(documents),
			)

			job := bp.jobFactory(document)
			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("document failed",
					"document", document,
					"error", err,
				)
			}
			done(job.Finish(), i)
			return nil
		})
	}

	return g.Wait()
}
