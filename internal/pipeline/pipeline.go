package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is one unit of work run against a Job.
type Step interface {
	// Do executes the step. A returned error is recorded in the job report.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logs and reports.
	Name() string
}

// requiredStep is implemented by steps whose failure stops the pipeline
// even when continueOnError is set.
type requiredStep interface {
	Required() bool
}

func isRequired(step Step) bool {
	r, ok := step.(requiredStep)
	return ok && r.Required()
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps running the remaining steps after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for step execution.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps executing after a step fails. Failed steps
// are logged and recorded in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a Pipeline. Steps are added with AddStep.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against job. Cancellation is checked before each
// step; a cancelled run marks the report and returns ctx.Err().
//
// When continueOnError is false, or a required step fails, the failure is
// returned. Otherwise Execute returns nil and failures are only recorded in
// the report.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"document", job.Document,
				"reason", ctx.Err(),
			)
			job.Report.Cancelled = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"document", job.Document,
		)

		err := step.Do(ctx, job)
		job.Report.PerformedSteps = append(job.Report.PerformedSteps, step.Name())
		if err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"document", job.Document,
				"error", err,
			)
			job.Report.AddError(fmt.Errorf("%s: %w", step.Name(), err))
			if !p.continueOnError || isRequired(step) {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"document", job.Document,
		)
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
