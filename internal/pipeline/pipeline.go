// Package pipeline runs a fixed sequence of steps and stops at the first failure.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/exitcode"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

type StepResult struct {
	Name     string
	Err      error
	ExitCode int
	Duration time.Duration
}

func (result StepResult) Succeeded() bool {
	return result.Err == nil
}

// StepError carries the failing step's name; its exit code is the step's.
type StepError struct {
	Step string
	Err  error
}

func (stepErr *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", stepErr.Step, stepErr.Err)
}

func (stepErr *StepError) Unwrap() error {
	return stepErr.Err
}

func (stepErr *StepError) ExitCode() int {
	return exitcode.CodeOf(stepErr.Err)
}

// Run executes steps in order. Steps after a failing one are not run; the
// results cover every step that ran.
func Run(ctx context.Context, steps ...Step) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := runStep(ctx, step)
		results = append(results, result)
		if !result.Succeeded() {
			return results, &StepError{Step: step.Name, Err: result.Err}
		}
	}
	return results, nil
}

// StepSpanName is the span recorded around every step; its "step" attribute
// carries the step name.
const StepSpanName = "pipeline.step"

func runStep(ctx context.Context, step Step) StepResult {
	stepCtx, span := perf.StartSpan(ctx, StepSpanName, perf.WithAttributes(attribute.String("step", step.Name)))
	start := time.Now()
	err := step.Run(stepCtx)
	span.RecordError(err)
	span.End()

	return StepResult{
		Name:     step.Name,
		Err:      err,
		ExitCode: exitcode.CodeOf(err),
		Duration: time.Since(start),
	}
}
