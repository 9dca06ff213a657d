package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedLatency struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordedLatency) ObserveRequest(method string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, fmt.Sprintf("%s %d", method, status))
}

func newTestCorrelator(t *testing.T) (*Correlator, *logger.TestLogBuffer, *recordedLatency) {
	t.Helper()
	log, buf := logger.NewTestLogger()
	obs := &recordedLatency{}
	return NewCorrelator(log, obs), buf, obs
}

func TestCorrelator_Begin(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCorrelator(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks?status=todo", nil)
	req.RemoteAddr = "10.1.2.3:5555"

	h, req := c.Begin(rec, req)

	rc, ok := shared.RequestContextFrom(req.Context())
	require.True(t, ok)
	assert.Same(t, h.Context, rc)
	assert.NotEmpty(t, rc.RequestID)
	assert.Equal(t, rc.RequestID, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, http.MethodGet, rc.Method)
	assert.Equal(t, "/api/tasks?status=todo", rc.URL)
	assert.Equal(t, "10.1.2.3", rc.ClientIP)
	assert.False(t, rc.StartTime.IsZero())
}

func TestCorrelator_Middleware_LogsOnce(t *testing.T) {
	t.Parallel()

	c, buf, obs := newTestCorrelator(t)
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	handler.ServeHTTP(rec, req)

	requestID := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, requestID)

	completed, err := buf.EntriesWithMessage("request completed")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	line := completed[0]
	assert.Equal(t, requestID, line["request_id"])
	assert.Equal(t, "POST", line["method"])
	assert.Equal(t, "/api/tasks", line["url"])
	assert.EqualValues(t, http.StatusTeapot, line["status_code"])
	assert.Contains(t, line, "response_time_ms")
	assert.Equal(t, "192.0.2.10", line["client_ip"])

	inside, err := buf.EntriesWithMessage("inside handler")
	require.NoError(t, err)
	require.Len(t, inside, 1)
	assert.Equal(t, requestID, inside[0]["request_id"], "handler logs carry the request id")

	assert.Equal(t, []string{"POST 418"}, obs.entries)
}

func TestCorrelator_Middleware_DefaultsTo200(t *testing.T) {
	t.Parallel()

	c, buf, _ := newTestCorrelator(t)
	handler := c.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	completed, err := buf.EntriesWithMessage("request completed")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.EqualValues(t, http.StatusOK, completed[0]["status_code"])
}

func TestCorrelator_EndIsIdempotent(t *testing.T) {
	t.Parallel()

	c, buf, obs := newTestCorrelator(t)
	h, _ := c.Begin(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	c.End(h, http.StatusOK)
	c.End(h, http.StatusInternalServerError)
	c.Abandon(h)
	c.End(nil, http.StatusOK)

	completed, err := buf.EntriesWithMessage("request completed")
	require.NoError(t, err)
	assert.Len(t, completed, 1)
	abandoned, err := buf.EntriesWithMessage("request abandoned")
	require.NoError(t, err)
	assert.Empty(t, abandoned)
	assert.Len(t, obs.entries, 1)
}

func TestCorrelator_AbandonOnDisconnect(t *testing.T) {
	t.Parallel()

	c, buf, obs := newTestCorrelator(t)
	ctx, cancel := context.WithCancel(context.Background())

	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel() // client goes away before anything is written
		<-r.Context().Done()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil).WithContext(ctx))

	completed, err := buf.EntriesWithMessage("request completed")
	require.NoError(t, err)
	assert.Empty(t, completed)
	abandoned, err := buf.EntriesWithMessage("request abandoned")
	require.NoError(t, err)
	assert.Len(t, abandoned, 1)
	assert.Empty(t, obs.entries)
}

func TestCorrelator_PanicRecoveredAs500(t *testing.T) {
	t.Parallel()

	c, buf, _ := newTestCorrelator(t)
	handler := c.Middleware(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("database password=hunter2 leaked")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgInternalError)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, buf.String(), "hunter2")

	completed, err := buf.EntriesWithMessage("request completed")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.EqualValues(t, http.StatusInternalServerError, completed[0]["status_code"])
}

func TestCorrelator_ConcurrentRequestsAreIsolated(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCorrelator(t)

	// The handler reads the id both synchronously and from a goroutine
	// started with the request context after other requests have begun.
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		direct := shared.GetRequestID(r.Context())
		async := make(chan string, 1)
		go func(ctx context.Context) {
			time.Sleep(time.Millisecond)
			async <- shared.GetRequestID(ctx)
		}(context.WithoutCancel(r.Context()))
		_, _ = fmt.Fprintf(w, "%s %s", direct, <-async)
	}))

	const n = 100
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			id := rec.Header().Get(RequestIDHeader)
			assert.Equal(t, id+" "+id, rec.Body.String())
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "request id %s reused", id)
		seen[id] = struct{}{}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(r))

	r.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(r))
}
