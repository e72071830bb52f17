package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 300

// PGXTracer emits a client span per catalog query. Attach it through
// pgxpool.Config.ConnConfig.Tracer.
type PGXTracer struct{}

var (
	_ pgx.QueryTracer    = PGXTracer{}
	_ pgx.CopyFromTracer = PGXTracer{}
)

func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := sqlVerb(data.SQL)
	ctx, _ = startDBSpan(ctx, "pgx "+op,
		attribute.String("db.operation.name", op),
		attribute.String("db.query.text", clip(data.SQL)),
		attribute.Int("db.query.args", len(data.Args)),
	)
	return ctx
}

func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	endDBSpan(ctx, data.CommandTag.RowsAffected(), data.Err)
}

func (PGXTracer) TraceCopyFromStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceCopyFromStartData) context.Context {
	table := data.TableName.Sanitize()
	ctx, _ = startDBSpan(ctx, "pgx COPY "+table,
		attribute.String("db.operation.name", "COPY"),
		attribute.String("db.collection.name", table),
	)
	return ctx
}

func (PGXTracer) TraceCopyFromEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceCopyFromEndData) {
	endDBSpan(ctx, data.CommandTag.RowsAffected(), data.Err)
}

func startDBSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, semconv.DBSystemPostgreSQL)
	return otel.Tracer("github.com/noah-isme/backend-headunit/pgx").Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func endDBSpan(ctx context.Context, rows int64, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", rows))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// sqlVerb returns the leading keyword, e.g. "SELECT", or "QUERY" for blank SQL.
func sqlVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "QUERY"
	}
	return strings.ToUpper(fields[0])
}

func clip(sql string) string {
	sql = strings.TrimSpace(sql)
	if len(sql) <= maxStatementLen {
		return sql
	}
	return sql[:maxStatementLen] + "..."
}
