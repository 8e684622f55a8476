package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cybershaala/academy-backend/api/middleware"
	"github.com/cybershaala/academy-backend/api/responses"
	"github.com/cybershaala/academy-backend/api/validators"
	"github.com/cybershaala/academy-backend/internal/pipeline"
	"github.com/cybershaala/academy-backend/internal/reconcile"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
)

const (
	missingOrdersDefaultLimit = 50
	missingOrdersMaxLimit     = 200

	// sourceAdmin tags enrollments created through the operator endpoint so
	// they are distinguishable from webhook and reconciliation ones.
	sourceAdmin = "admin"
)

type missingOrderDetector interface {
	DetectMissing(ctx context.Context, limit, offset int) ([]reconcile.MissingOrder, error)
}

type orderReprocessor interface {
	Reprocess(ctx context.Context, orderID, source string) (*pipeline.Result, error)
}

// AdminMissingOrders pages through reconcilable orders that have no matching
// enrollment. The secret check is handled by the AdminSecret middleware.
func AdminMissingOrders(detector missingOrderDetector, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if detector == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", missingOrdersDefaultLimit, 1, missingOrdersMaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		missing, err := detector.DetectMissing(r.Context(), limit, (page-1)*limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if missing == nil {
			missing = []reconcile.MissingOrder{}
		}

		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"missing": missing,
			"page":    page,
			"limit":   limit,
		})
	}
}

type reprocessOrderRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Secret  string `json:"secret"`
}

// AdminReprocessOrder rebuilds an enrollment from a stored order snapshot.
// The shared secret may arrive in the header (checked by middleware) or in
// the request body.
func AdminReprocessOrder(reprocessor orderReprocessor, adminSecret string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reprocessor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pipeline unavailable"))
			return
		}

		var req reprocessOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if r.Header.Get(middleware.EnrollmentSecretHeader) == "" {
			if !middleware.SecretMatches(adminSecret, req.Secret) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid enrollment secret"))
				return
			}
		}

		orderID := strings.TrimSpace(req.OrderID)
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		result, err := reprocessor.Reprocess(r.Context(), orderID, sourceAdmin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, map[string]any{"result": result})
	}
}
