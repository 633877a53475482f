package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span represents a single named and timed operation of a workflow.
type Span struct {
	recorder *Recorder
	ctx      context.Context
	span     trace.Span
	logger   *slog.Logger
}

// StartSpan starts a new span.
func (r *Recorder) StartSpan(
	ctx context.Context,
	name string,
	attrs ...Attr,
) (context.Context, *Span) {
	set := attrSet{
		Namespace: r.name,
		Attrs:     attrs,
	}

	ctx, span := r.tracer.Start(
		ctx,
		name,
		trace.WithAttributes(r.attrs.ForSpan()...),
		trace.WithAttributes(set.ForSpan()...),
	)

	loggerAttrs := append(
		set.ForLogger(),
		slog.String("span_name", name),
	)

	sctx := span.SpanContext()
	if sctx.HasTraceID() {
		loggerAttrs = append(
			loggerAttrs,
			slog.String("trace_id", sctx.TraceID().String()),
		)
	}
	if sctx.HasSpanID() {
		loggerAttrs = append(
			loggerAttrs,
			slog.String("span_id", sctx.SpanID().String()),
		)
	}

	return ctx, &Span{
		r,
		ctx,
		span,
		r.logger.With(loggerAttrs...),
	}
}

// End completes the span.
func (s *Span) End() {
	s.span.End()
}

// SetAttributes sets attributes on the span.
func (s *Span) SetAttributes(attrs ...Attr) {
	set := attrSet{
		Namespace: s.recorder.name,
		Attrs:     attrs,
	}

	s.span.SetAttributes(set.ForSpan()...)
	s.logger = s.logger.With(set.ForLogger()...)
}

// Debug logs a debug-level event.
func (s *Span) Debug(message string, attrs ...Attr) {
	s.log(slog.LevelDebug, message, attrs)
}

// Info logs an info-level event.
func (s *Span) Info(message string, attrs ...Attr) {
	s.log(slog.LevelInfo, message, attrs)
}

// Warn logs a warning-level event.
func (s *Span) Warn(message string, attrs ...Attr) {
	s.log(slog.LevelWarn, message, attrs)
}

// Error logs an error-level event.
//
// It marks the span as an error and increments the "errors" metric.
func (s *Span) Error(message string, err error, attrs ...Attr) {
	set := attrSet{
		Namespace: s.recorder.name,
		Attrs:     attrs,
	}

	s.span.SetStatus(codes.Error, err.Error())
	s.span.RecordError(err, trace.WithAttributes(set.ForSpan()...))
	s.recorder.errors.Add(s.ctx, 1)

	if !s.logger.Enabled(s.ctx, slog.LevelError) {
		return
	}

	s.logger.ErrorContext(
		s.ctx,
		message,
		set.ForLogger(slog.String("error", err.Error()))...,
	)
}

func (s *Span) log(level slog.Level, message string, attrs []Attr) {
	if !s.logger.Enabled(s.ctx, level) {
		return
	}

	set := attrSet{
		Namespace: s.recorder.name,
		Attrs:     attrs,
	}

	s.span.AddEvent(message, trace.WithAttributes(set.ForSpan()...))
	s.logger.Log(s.ctx, level, message, set.ForLogger()...)
}
