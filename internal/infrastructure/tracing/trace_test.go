package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	tracer := New("test", zap.New(core))
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func TestStartSpanInheritsTrace(t *testing.T) {
	tracer, _ := observedTracer(t)

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)

	child, childCtx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
}

func TestInjectExtract(t *testing.T) {
	ctx := WithTrace(context.Background(), "trace-1", "span-1")
	h := http.Header{}
	Inject(ctx, h)

	traceID, spanID := Extract(h)
	assert.Equal(t, TraceID("trace-1"), traceID)
	assert.Equal(t, SpanID("span-1"), spanID)
	assert.Equal(t, "[trace:trace-1 span:span-1]", FormatTrace(traceID, spanID))
}

func TestSpanError(t *testing.T) {
	span := &Span{Tags: map[string]string{}}
	span.SetError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, span.StatusCode)

	span = &Span{}
	span.SetStatus(http.StatusNotFound)
	span.SetError(errors.New("missing"))
	assert.Equal(t, http.StatusNotFound, span.StatusCode)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := observedTracer(t)

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/ui/:id", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("propagates caller trace", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ui/abc", nil)
		req.Header.Set(HeaderTraceID, "caller-trace")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, TraceID("caller-trace"), seen)
		assert.Equal(t, "caller-trace", w.Header().Get(HeaderTraceID))
		assert.NotEmpty(t, w.Header().Get(HeaderSpanID))
	})

	t.Run("mints trace when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ui/abc", nil))
		assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
		assert.NotEqual(t, "caller-trace", w.Header().Get(HeaderTraceID))
	})

	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed").Len() == 2
	}, 2*time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("span completed").All()[0]
	assert.Equal(t, "GET /ui/:id", entry.ContextMap()["operation"])
	assert.Equal(t, int64(http.StatusNoContent), entry.ContextMap()["status"])
}

func TestSubmitAfterClose(t *testing.T) {
	tracer := New("test", nil)
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	span.Finish()
	assert.NotPanics(t, func() { tracer.Submit(span) })
}
