package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// RequestIDHeader is the response header carrying the request id.
const RequestIDHeader = "Request-Id"

// LatencyObserver receives the latency of every completed request.
type LatencyObserver interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// Correlator assigns each request an id, exposes request metadata through
// the request context and logs one line when the request completes.
type Correlator struct {
	logger   *slog.Logger
	observer LatencyObserver
	now      func() time.Time
}

// NewCorrelator creates a Correlator. observer may be nil.
func NewCorrelator(log *slog.Logger, observer LatencyObserver) *Correlator {
	if log == nil {
		log = slog.Default()
	}
	return &Correlator{
		logger:   log,
		observer: observer,
		now:      time.Now,
	}
}

// RequestHandle tracks one in-flight request between Begin and End.
type RequestHandle struct {
	Context *shared.RequestContext

	logger *slog.Logger
	once   sync.Once
}

// Begin records the request start, stores the RequestContext and a logger
// carrying request_id in the request context, and sets the Request-Id
// response header.
func (c *Correlator) Begin(w http.ResponseWriter, r *http.Request) (*RequestHandle, *http.Request) {
	rc := &shared.RequestContext{
		RequestID: shared.NewRequestID(),
		Method:    r.Method,
		URL:       redact.String(r.URL.RequestURI()),
		StartTime: c.now(),
		ClientIP:  clientIP(r),
	}

	reqLogger := c.logger.With(slog.String("request_id", rc.RequestID))
	ctx := shared.WithRequestContext(r.Context(), rc)
	ctx = logger.NewContext(ctx, reqLogger)

	w.Header().Set(RequestIDHeader, rc.RequestID)

	return &RequestHandle{Context: rc, logger: reqLogger}, r.WithContext(ctx)
}

// End logs the completion line and records latency. Only the first call to
// End or Abandon for a handle has any effect.
func (c *Correlator) End(h *RequestHandle, status int) {
	if h == nil {
		return
	}
	h.once.Do(func() {
		elapsed := c.now().Sub(h.Context.StartTime)
		h.logger.Info("request completed",
			slog.String("method", h.Context.Method),
			slog.String("url", h.Context.URL),
			slog.Int("status_code", status),
			slog.Int64("response_time_ms", elapsed.Milliseconds()),
			slog.String("client_ip", h.Context.ClientIP))
		if c.observer != nil {
			c.observer.ObserveRequest(h.Context.Method, status, elapsed)
		}
	})
}

// Abandon finishes a request whose client went away before any response was
// written. Only the first call to End or Abandon for a handle has any effect.
func (c *Correlator) Abandon(h *RequestHandle) {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.logger.Debug("request abandoned",
			slog.String("method", h.Context.Method),
			slog.String("url", h.Context.URL),
			slog.Int64("response_time_ms", c.now().Sub(h.Context.StartTime).Milliseconds()),
			slog.String("client_ip", h.Context.ClientIP))
	})
}

// Middleware wraps next with Begin and End. A handler that returns without
// writing is reported as 200 unless the client disconnected, in which case
// the request is abandoned.
func (c *Correlator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, r := c.Begin(w, r)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			if rec := recover(); rec != nil {
				c.Abandon(h)
				panic(rec)
			}
			status := ww.Status()
			if status == 0 {
				if r.Context().Err() != nil {
					c.Abandon(h)
					return
				}
				status = http.StatusOK
			}
			c.End(h, status)
		}()

		next.ServeHTTP(ww, r)
	})
}

// clientIP returns the host part of RemoteAddr, which chi's RealIP
// middleware has already rewritten from forwarding headers when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
