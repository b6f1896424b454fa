package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func startRecordedSpan(t *testing.T) (trace.Span, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")
	return span, recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.AsString(), true
		}
	}
	return "", false
}

func TestRecordErrorSetsTypedAttributes(t *testing.T) {
	span, recorder := startRecordedSpan(t)

	RecordError(span, errors.New("无法提取文本"), ErrorTypeExtraction)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	errType, ok := attrValue(spans[0].Attributes(), "error.type")
	require.True(t, ok, "应记录error.type属性")
	assert.Equal(t, string(ErrorTypeExtraction), errType)

	errMsg, ok := attrValue(spans[0].Attributes(), "error.message")
	require.True(t, ok)
	assert.Equal(t, "无法提取文本", errMsg)

	assert.Equal(t, codes.Error, spans[0].Status().Code, "span状态应为Error")
}

func TestRecordErrorNilSafe(t *testing.T) {
	span, recorder := startRecordedSpan(t)

	// nil span与nil error都不应panic，也不应改变span状态
	RecordError(nil, errors.New("boom"), ErrorTypeInternal)
	RecordError(span, nil, ErrorTypeInternal)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestRecordRabbitMQNack(t *testing.T) {
	span, recorder := startRecordedSpan(t)

	RecordRabbitMQNack(span, "42", "connection reset")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	msgID, ok := attrValue(spans[0].Attributes(), "messaging.message_id")
	require.True(t, ok)
	assert.Equal(t, "42", msgID)

	errType, _ := attrValue(spans[0].Attributes(), "error.type")
	assert.Equal(t, string(ErrorTypeRabbitMQ), errType)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "connection reset", spans[0].Status().Description)
}
