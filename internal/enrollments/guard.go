package enrollments

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cybershaala/academy-backend/pkg/db/models"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
)

// Guard answers whether an enrollment already exists for a payment reference
// or an order id. It is the fast path only; the unique indexes on the
// enrollments table are the hard backstop for concurrent deliveries.
type Guard struct {
	repo Repository
}

// NewGuard builds the idempotency guard.
func NewGuard(repo Repository) (*Guard, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "enrollments repository is required")
	}
	return &Guard{repo: repo}, nil
}

// Exists runs the payment-reference and order-ref lookups concurrently,
// skipping any empty key. A payment-reference match wins over an order-ref
// match since one order can legitimately map to retried duplicate rows.
func (g *Guard) Exists(ctx context.Context, paymentRef, orderRef string) (*models.Enrollment, error) {
	if paymentRef == "" && orderRef == "" {
		return nil, nil
	}

	var byPayment, byOrder *models.Enrollment
	group, groupCtx := errgroup.WithContext(ctx)

	if paymentRef != "" {
		group.Go(func() error {
			found, err := g.repo.FindByPaymentRef(groupCtx, paymentRef)
			if err != nil {
				return err
			}
			byPayment = found
			return nil
		})
	}
	if orderRef != "" {
		group.Go(func() error {
			found, err := g.repo.FindByOrderRef(groupCtx, orderRef)
			if err != nil {
				return err
			}
			byOrder = found
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enrollment existence check")
	}

	if byPayment != nil {
		return byPayment, nil
	}
	return byOrder, nil
}
