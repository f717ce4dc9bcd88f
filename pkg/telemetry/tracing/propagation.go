package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader echoes the request's trace ID to the caller.
const TraceIDHeader = "X-Trace-ID"

// Extract reads W3C trace context from HTTP headers.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context from ctx into HTTP headers.
func Inject(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// RouteNamer names a request's span once routing has finished, usually
// "METHOD /route/{pattern}". It returns "" to keep the default name.
type RouteNamer func(r *http.Request) string

// HTTPMiddleware continues the caller's trace. When t is enabled every
// request gets a server span, renamed by name after the handler returns.
// The trace ID is echoed in X-Trace-ID whenever one is known.
func HTTPMiddleware(t *Tracer, name RouteNamer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := Extract(r.Context(), r.Header)

			if !t.Enabled() {
				if id := TraceID(ctx); id != "" {
					w.Header().Set(TraceIDHeader, id)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx, span := t.Start(ctx, "HTTP "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()
			w.Header().Set(TraceIDHeader, TraceID(ctx))

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			r = r.WithContext(ctx)
			next.ServeHTTP(sw, r)

			if name != nil {
				if n := name(r); n != "" {
					span.SetName(n)
				}
			}
			span.SetAttributes(attribute.Int("http.response.status_code", sw.status))
			if sw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(sw.status))
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
