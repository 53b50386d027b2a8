package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/autoshop-quotes/internal/platform/logging"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/telemetry"
)

// Writes that touch the quote store run as Validate, Perform, Verify,
// Archive, Respond. Nothing is announced (events, metrics) until the store
// has confirmed the write and the result has been checked.

// ExecutionStep names a stage of an operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the step an operation failed in. Unwrap exposes
// the cause so domain errors keep their meaning for callers.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Cause     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Operation, e.Step, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Operation holds the step functions. Nil steps are skipped.
type Operation[I, P, V, O any] struct {
	Name string

	// Validate rejects bad input before anything is written.
	Validate func(ctx context.Context, input I) error

	// Perform does the write.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify checks what Perform returned before it is trusted. Without it
	// the performed value flows on unchanged when P and V are the same type.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive announces the verified result (events, metrics).
	Archive func(ctx context.Context, input I, verified V) error

	// Respond shapes the value handed back to the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// Executor runs operations with per-step logging and a span per operation.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger uses slog.Default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Execute runs op on input step by step and stops at the first failure.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	ctx, span := telemetry.Tracer().Start(ctx, "quotes."+op.Name)
	defer span.End()

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step ExecutionStep, err error) error {
		level := slog.LevelError
		if step == StepValidate {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "operation step failed",
			slog.String("step", string(step)),
			slog.Any("error", err),
		)
		span.SetAttributes(attribute.String("quotes.failed_step", string(step)))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(step)+" failed")

		return &ExecutionError{Operation: op.Name, Step: step, Cause: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			return zero, fail(StepValidate, err)
		}
	}

	var performed P
	if op.Perform != nil {
		var err error
		if performed, err = op.Perform(ctx, input); err != nil {
			return zero, fail(StepPerform, err)
		}
	}

	var verified V
	if op.Verify != nil {
		var err error
		if verified, err = op.Verify(ctx, input, performed); err != nil {
			return zero, fail(StepVerify, err)
		}
	} else if v, ok := any(performed).(V); ok {
		verified = v
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, input, verified); err != nil {
			return zero, fail(StepArchive, err)
		}
	}

	var result O
	if op.Respond != nil {
		var err error
		if result, err = op.Respond(ctx, input, verified); err != nil {
			return zero, fail(StepRespond, err)
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// FailedStep reports the step an execution error came from.
func FailedStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
