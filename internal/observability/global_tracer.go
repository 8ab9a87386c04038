package observability

import (
	"context"
	"fmt"

	"reportdesk/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer("reportdesk")
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer("reportdesk")
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceFunctionWithErrorHandling starts a new span and automatically adds error attributes if the function panics or returns an error.
func TraceFunctionWithErrorHandling(ctx context.Context, serviceName, functionName string, fn func() error, attributes ...attribute.KeyValue) error {
	_, span := TraceFunction(ctx, serviceName, functionName, attributes...)
	defer func() {
		if err := recover(); err != nil {
			span.SetAttributes(
				attribute.Bool("error", true),
				attribute.String("error.type", "panic"),
				attribute.String("error.message", fmt.Sprintf("%v", err)),
			)
			span.End()
			panic(err) // re-panic
		}
	}()

	err := fn()
	if err != nil {
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)
	}
	span.End()
	return err
}

// TraceStoreFunction starts a new span for a record store function.
func TraceStoreFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "store", functionName, attributes...)
}

// TraceReportFunction starts a new span for a report service function.
func TraceReportFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "report", functionName, attributes...)
}

// TraceAttachmentFunction starts a new span for an attachment service function.
func TraceAttachmentFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "attachment", functionName, attributes...)
}

// TraceExportFunction starts a new span for an export service function.
func TraceExportFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "export", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceDatabaseFunction starts a new span for a database function.
func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

// AttributeReportID returns a tracing attribute for a report ID.
func AttributeReportID(id int64) attribute.KeyValue {
	return attribute.Int64("report.id", id)
}

// AttributeReportTitle returns a tracing attribute for a report title.
func AttributeReportTitle(title string) attribute.KeyValue {
	return attribute.String("report.title", title)
}

// AttributeStatus returns a tracing attribute for a report status.
func AttributeStatus(status models.Status) attribute.KeyValue {
	return attribute.String("report.status", string(status))
}

// AttributeCategory returns a tracing attribute for a report category.
func AttributeCategory(category models.Category) attribute.KeyValue {
	return attribute.String("report.category", string(category))
}

// AttributePriority returns a tracing attribute for a report priority.
func AttributePriority(priority models.Priority) attribute.KeyValue {
	return attribute.String("report.priority", string(priority))
}

// AttributeCount returns a tracing attribute for a row count.
func AttributeCount(count int) attribute.KeyValue {
	return attribute.Int("count", count)
}

// AttributeBatchSize returns a tracing attribute for the size of a status edit batch.
func AttributeBatchSize(size int) attribute.KeyValue {
	return attribute.Int("batch.size", size)
}

// AttributeExportFormat returns a tracing attribute for an export format.
func AttributeExportFormat(format string) attribute.KeyValue {
	return attribute.String("export.format", format)
}

// AttributeAttachmentName returns a tracing attribute for an attachment filename.
func AttributeAttachmentName(name string) attribute.KeyValue {
	return attribute.String("attachment.name", name)
}
