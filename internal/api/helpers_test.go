package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/notify"
	"github.com/stretchr/testify/require"
)

// newJSONRequest builds a request with body encoded as JSON. A string body
// is sent verbatim.
func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withPrincipal attaches p as the gate would.
func withPrincipal(req *http.Request, p *shared.Principal) *http.Request {
	return req.WithContext(shared.WithPrincipal(req.Context(), p))
}

// withURLParam sets a chi path parameter on req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newPrincipal(role domain.Role) *shared.Principal {
	return &shared.Principal{
		SubjectID:   uuid.New(),
		Role:        role,
		TokenID:     uuid.NewString(),
		TokenExpiry: time.Now().Add(time.Hour),
	}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rec).Error
}

// recordingQueue implements MailQueue and keeps every message.
type recordingQueue struct {
	mu   sync.Mutex
	msgs []notify.Message
	ctxs []context.Context
	err  error
}

func (q *recordingQueue) Enqueue(ctx context.Context, msg notify.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msg)
	q.ctxs = append(q.ctxs, ctx)
	return nil
}

func (q *recordingQueue) messages() []notify.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]notify.Message(nil), q.msgs...)
}
