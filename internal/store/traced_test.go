package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTraced_RecordsSpansAndErrors(t *testing.T) {
	inner, mock := newMock(t, "sqlite3")
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notes WHERE id = ?`)).
		WithArgs(int64(9)).
		WillReturnError(errors.New("disk I/O error"))

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	g := &Traced{inner: inner, tracer: tp.Tracer(tracerName)}

	_, err := g.Exec(context.Background(), `DELETE FROM notes WHERE id = ?`, int64(9))
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "store.exec", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
