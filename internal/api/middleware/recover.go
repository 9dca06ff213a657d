package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// MsgInternalError is the body message for unexpected failures.
const MsgInternalError = "An unexpected error occurred"

// Recoverer turns a handler panic into a 500 response. The panic value and
// stack are logged, never sent to the client. http.ErrAbortHandler is
// re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(rec)
			}

			logger.FromContext(r.Context()).Error("panic recovered",
				slog.String("panic", redact.String(fmt.Sprint(rec))),
				slog.String("stack", redact.Stack(string(debug.Stack()))))
			shared.RespondWithError(w, r, http.StatusInternalServerError, MsgInternalError)
		}()

		next.ServeHTTP(w, r)
	})
}
