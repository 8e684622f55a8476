package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cybershaala/academy-backend/api/middleware"
	"github.com/cybershaala/academy-backend/api/responses"
	"github.com/cybershaala/academy-backend/api/validators"
	"github.com/cybershaala/academy-backend/internal/enrollments"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/pagination"
)

type enrollmentLister interface {
	ListByStudent(ctx context.Context, studentID, email string, params pagination.Params) ([]enrollments.EnrollmentDTO, *string, error)
}

// ListEnrollments returns the authenticated student's enrollments, newest
// first, with an opaque cursor for the next page.
func ListEnrollments(lister enrollmentLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		items, nextCursor, err := lister.ListByStudent(r.Context(), claims.StudentID, claims.Email, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []enrollments.EnrollmentDTO{}
		}

		responses.WriteSuccess(w, map[string]any{
			"enrollments": items,
			"nextCursor":  nextCursor,
		})
	}
}
