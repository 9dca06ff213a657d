package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// principalFromRequest returns the Principal attached by the authorization
// gate. Handlers behind the gate always have one; its absence means the
// route was wired without a guard.
func principalFromRequest(r *http.Request) (*shared.Principal, bool) {
	p, ok := shared.PrincipalFrom(r.Context())
	if !ok || p.SubjectID == uuid.Nil {
		return nil, false
	}
	return p, true
}

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handlePrincipalAndPathUUID extracts both the Principal from context and a
// UUID from the path. It writes an error response if either extraction
// fails.
func handlePrincipalAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (*shared.Principal, uuid.UUID, bool) {
	log := logger.FromContext(r.Context())

	principal, ok := principalFromRequest(r)
	if !ok {
		log.Warn("principal not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return nil, uuid.Nil, false
	}

	return principal, pathID, true
}

// parsePagination reads limit and offset query parameters. Missing values
// take defaults; limit is clamped to MaxPageSize.
func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = DefaultPageSize
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
		}
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, domain.NewValidationError("offset", "must be a non-negative integer", domain.ErrValidation)
		}
	}

	return limit, offset, nil
}

// decodeAndValidate parses the JSON body into v and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
