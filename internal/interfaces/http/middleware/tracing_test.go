package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.FailNow(t, "span not found", name)
	return nil
}

func attrValue(span sdktrace.ReadOnlySpan, key attribute.Key) (string, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "pos-test"}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "pos-test"}))
	router.Use(SpanAttributes())
	router.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-42")
		c.Set(JWTUserIDKey, "operator-7")
		c.Next()
	})
	router.POST("/tickets/:id/submit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tickets/abc/submit", nil))
	require.Equal(t, http.StatusOK, w.Code)

	span := findSpan(t, sr, "POST /tickets/:id/submit")
	requestID, ok := attrValue(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", requestID)
	userID, ok := attrValue(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "operator-7", userID)
	ticketID, ok := attrValue(span, "ticket.id")
	require.True(t, ok)
	assert.Equal(t, "abc", ticketID)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status      int
		description string
	}{
		{http.StatusNotFound, "Not Found"},
		{http.StatusConflict, "Conflict"},
		{http.StatusUnprocessableEntity, "Client Error"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(Tracing())
			router.Use(SpanErrorMarker())
			router.GET("/test", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{"error": "x"})
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, tt.status, w.Code)

			span := findSpan(t, sr, "GET /test")
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.description, span.Status().Description)
		})
	}
}

func TestSpanErrorMarker_SuccessLeavesStatus(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing())
	router.Use(SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	span := findSpan(t, sr, "GET /test")
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()

	assert.Equal(t, "pos-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
}

func TestGetRequestID(t *testing.T) {
	router := gin.New()
	router.GET("/ctx", func(c *gin.Context) {
		c.Set(RequestIDKey, "from-context")
		c.String(http.StatusOK, getRequestID(c))
	})
	router.GET("/header", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ctx", nil))
	assert.Equal(t, "from-context", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/header", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", MaxRequestIDLength+20))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), MaxRequestIDLength)
}
