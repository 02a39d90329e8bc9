// pkg/check_io/context.go

package check_io

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_err"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/telemetry"
)

// RuntimeContext carries the per-run context, logger and root span.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Span       trace.Span
	Timestamp  time.Time
	RunID      string
	Command    string
	Attributes map[string]string
}

// NewContext starts the root span for command and scopes the global logger to this run.
func NewContext(parent context.Context, command string) *RuntimeContext {
	ctx, span := telemetry.Start(parent, command)
	runID := uuid.NewString()

	fields := []zap.Field{
		zap.String("command", command),
		zap.String("run_id", runID),
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}

	return &RuntimeContext{
		Ctx:        ctx,
		Log:        zap.L().With(fields...),
		Span:       span,
		Timestamp:  time.Now(),
		RunID:      runID,
		Command:    command,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = check_err.NewInternalError(r)
		rc.Log.Error("panic recovered", zap.Any("panic", r))
	}
}

// End logs the outcome and closes the root span with summary attributes.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	var err error
	if errPtr != nil {
		err = *errPtr
	}
	duration := time.Since(rc.Timestamp)

	if err == nil {
		rc.Log.Info("Check completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Error("Check failed", zap.Duration("duration", duration), zap.Error(err))
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("run_id", rc.RunID),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error_type", check_err.Classify(err).String()))
		rc.Span.RecordError(err)
		rc.Span.SetStatus(codes.Error, check_err.UserMessage(err))
	}
	rc.Span.SetAttributes(attrs...)
}
