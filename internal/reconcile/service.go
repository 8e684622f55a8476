package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/cybershaala/academy-backend/internal/pipeline"
	"github.com/cybershaala/academy-backend/pkg/db/models"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
)

// SourceReconciliation tags enrollments created by the reconciliation path.
const SourceReconciliation = "reconciliation"

type orderLister interface {
	ListReconcilable(ctx context.Context, limit, offset int) ([]models.Order, error)
}

type existenceChecker interface {
	Exists(ctx context.Context, paymentRef, orderRef string) (*models.Enrollment, error)
}

type reprocessor interface {
	Reprocess(ctx context.Context, orderID, source string) (*pipeline.Result, error)
}

// MissingOrder is an order that should have produced an enrollment but did
// not.
type MissingOrder struct {
	OrderID string       `json:"orderId"`
	Order   models.Order `json:"order"`
}

// Summary reports one reconciliation sweep.
type Summary struct {
	Scanned     int `json:"scanned"`
	Missing     int `json:"missing"`
	Reprocessed int `json:"reprocessed"`
}

// Service detects orders whose webhook delivery was dropped before an
// enrollment got created, and optionally replays them through the pipeline.
type Service struct {
	orders    orderLister
	guard     existenceChecker
	pipeline  reprocessor
	batchSize int
	reprocess bool
	onMissing func(MissingOrder, *pipeline.Result, error)
	logg      *logger.Logger
}

// ServiceParams carries the reconciliation dependencies. OnMissing, when set,
// is invoked once per missing order with the reprocess outcome (nil result
// and nil error when reprocessing is disabled).
type ServiceParams struct {
	Orders    orderLister
	Guard     existenceChecker
	Pipeline  reprocessor
	BatchSize int
	Reprocess bool
	OnMissing func(MissingOrder, *pipeline.Result, error)
	Logger    *logger.Logger
}

// NewService builds the reconciliation service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service is required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard is required")
	}
	if params.Reprocess && params.Pipeline == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pipeline is required when reprocessing is enabled")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Service{
		orders:    params.Orders,
		guard:     params.Guard,
		pipeline:  params.Pipeline,
		batchSize: batchSize,
		reprocess: params.Reprocess,
		onMissing: params.OnMissing,
		logg:      params.Logger,
	}, nil
}

// DetectMissing returns one page of orders lacking a matching enrollment.
// Matching uses the same lookups as the webhook path: payment reference
// first, order id second.
func (s *Service) DetectMissing(ctx context.Context, limit, offset int) ([]MissingOrder, error) {
	rows, err := s.orders.ListReconcilable(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reconcilable orders")
	}

	missing := []MissingOrder{}
	for i := range rows {
		order := rows[i]
		paymentRef := ""
		if order.PaymentRef != nil {
			paymentRef = *order.PaymentRef
		}
		existing, err := s.guard.Exists(ctx, paymentRef, order.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			missing = append(missing, MissingOrder{OrderID: order.ID, Order: order})
		}
	}
	return missing, nil
}

// Run sweeps every reconcilable order in batches. Per-order reprocessing
// failures are aggregated; one bad order does not stop the sweep.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	var errs error

	for offset := 0; ; offset += s.batchSize {
		rows, err := s.orders.ListReconcilable(ctx, s.batchSize, offset)
		if err != nil {
			return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reconcilable orders")
		}
		if len(rows) == 0 {
			break
		}
		summary.Scanned += len(rows)

		for i := range rows {
			order := rows[i]
			paymentRef := ""
			if order.PaymentRef != nil {
				paymentRef = *order.PaymentRef
			}
			existing, err := s.guard.Exists(ctx, paymentRef, order.ID)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("check order %s: %w", order.ID, err))
				continue
			}
			if existing != nil {
				continue
			}

			summary.Missing++
			orderCtx := s.logg.WithOrderID(ctx, order.ID)
			s.logg.Warn(orderCtx, "order has no enrollment")

			if !s.reprocess {
				if s.onMissing != nil {
					s.onMissing(MissingOrder{OrderID: order.ID, Order: order}, nil, nil)
				}
				continue
			}
			result, err := s.pipeline.Reprocess(ctx, order.ID, SourceReconciliation)
			if s.onMissing != nil {
				s.onMissing(MissingOrder{OrderID: order.ID, Order: order}, result, err)
			}
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("reprocess order %s: %w", order.ID, err))
				continue
			}
			if result.Outcome == pipeline.OutcomeEnrolled {
				summary.Reprocessed++
			}
		}

		if len(rows) < s.batchSize {
			break
		}
	}

	s.logg.Info(ctx, fmt.Sprintf("reconciliation sweep: %d scanned, %d missing, %d reprocessed",
		summary.Scanned, summary.Missing, summary.Reprocessed))
	return summary, errs
}
