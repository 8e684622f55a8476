package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cybershaala/academy-backend/internal/enrollments"
	"github.com/cybershaala/academy-backend/internal/gateways"
	"github.com/cybershaala/academy-backend/pkg/db"
	"github.com/cybershaala/academy-backend/pkg/db/models"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/metrics"
)

// Outcome classifies what a pipeline run did.
type Outcome string

const (
	// OutcomeEnrolled means a new enrollment was durably created.
	OutcomeEnrolled Outcome = "enrolled"
	// OutcomeDuplicate means an enrollment already existed; no-op.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeOrderRecorded means the order was merged but no payment was
	// captured yet, so no enrollment is due.
	OutcomeOrderRecorded Outcome = "order_recorded"
	// OutcomeNoOrder means the payload carried no order identifier.
	OutcomeNoOrder Outcome = "no_order"
)

// Result is what every pipeline entry point returns.
type Result struct {
	Outcome    Outcome                    `json:"outcome"`
	OrderID    string                     `json:"orderId,omitempty"`
	Enrollment *enrollments.EnrollmentDTO `json:"enrollment,omitempty"`
}

type orderRecorder interface {
	RecordWebhook(ctx context.Context, incoming *models.Order) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
}

type existenceChecker interface {
	Exists(ctx context.Context, paymentRef, orderRef string) (*models.Enrollment, error)
}

type enrollmentPersister interface {
	Persist(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, bool, error)
	RecordSkip(ctx context.Context, existing *models.Enrollment)
}

type notifier interface {
	Dispatch(enrollment enrollments.EnrollmentDTO)
}

type eventGuard interface {
	CheckAndMark(ctx context.Context, paymentRef string) (bool, error)
	Delete(ctx context.Context, paymentRef string) error
}

// Service is the single orchestration path every entry point funnels
// through: gateway webhooks, admin reprocessing and reconciliation.
type Service struct {
	orders    orderRecorder
	guard     existenceChecker
	persister enrollmentPersister
	notifier  notifier
	events    eventGuard
	metrics   *metrics.WebhookMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams carries the pipeline dependencies. Events and Metrics are
// optional; Notifier may be nil when no intake endpoint is configured.
type ServiceParams struct {
	Orders    orderRecorder
	Guard     existenceChecker
	Persister enrollmentPersister
	Notifier  notifier
	Events    eventGuard
	Metrics   *metrics.WebhookMetrics
	Logger    *logger.Logger
}

// NewService builds the pipeline service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service is required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard is required")
	}
	if params.Persister == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "enrollment persister is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Service{
		orders:    params.Orders,
		guard:     params.Guard,
		persister: params.Persister,
		notifier:  params.Notifier,
		events:    params.Events,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// Process handles one normalized webhook event: merge the order row, then
// create the enrollment unless one already exists. A payload without an
// order id is acknowledged without writes; an order-only event (no payment
// captured yet) only merges the order.
func (s *Service) Process(ctx context.Context, payment *gateways.NormalizedPayment, source string) (*Result, error) {
	if payment == nil || payment.OrderID == "" {
		s.count(payment, OutcomeNoOrder)
		return &Result{Outcome: OutcomeNoOrder}, nil
	}

	ctx = s.logg.WithOrderID(ctx, payment.OrderID)
	if payment.PaymentID != "" {
		ctx = s.logg.WithPaymentRef(ctx, payment.PaymentID)
	}

	order, err := s.orders.RecordWebhook(ctx, orderFromPayment(payment))
	if err != nil {
		return nil, err
	}

	if payment.PaymentID == "" {
		s.logg.Info(ctx, "order event recorded, no payment captured yet")
		s.count(payment, OutcomeOrderRecorded)
		return &Result{Outcome: OutcomeOrderRecorded, OrderID: order.ID}, nil
	}

	result, err := s.enroll(ctx, payment, order, source)
	if err != nil {
		return nil, err
	}
	s.count(payment, result.Outcome)
	return result, nil
}

// Reprocess re-enters the pipeline for a stored order, using its persisted
// payment snapshot as the payment source. Used by the admin endpoint and the
// reconciliation job; shares the webhook path's idempotency semantics.
func (s *Service) Reprocess(ctx context.Context, orderID, source string) (*Result, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID)
	return s.enroll(ctx, paymentFromOrder(order), order, source)
}

func (s *Service) enroll(ctx context.Context, payment *gateways.NormalizedPayment, order *models.Order, source string) (*Result, error) {
	// The Redis mark is advisory only; the store lookup below stays the
	// authority, so a stale key never suppresses a legitimate enrollment.
	seen := s.fastPathSeen(ctx, payment.PaymentID)

	existing, err := s.guard.Exists(ctx, payment.PaymentID, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.duplicate(ctx, payment, existing), nil
	}
	if seen {
		s.logg.Info(ctx, "event marked seen in redis but no enrollment row, continuing")
	}

	enrollment := enrollments.Build(payment, order, source, s.now())
	persisted, created, err := s.persister.Persist(ctx, enrollment)
	if err != nil {
		s.fastPathRelease(ctx, payment.PaymentID)
		return nil, err
	}

	dto := enrollments.ToDTO(persisted)
	if !created {
		s.logDuplicate(ctx, payment)
		return &Result{Outcome: OutcomeDuplicate, OrderID: order.ID, Enrollment: &dto}, nil
	}

	s.logg.Info(ctx, fmt.Sprintf("enrollment %s created", persisted.EnrollmentID))
	if s.notifier != nil {
		s.notifier.Dispatch(dto)
	}
	return &Result{Outcome: OutcomeEnrolled, OrderID: order.ID, Enrollment: &dto}, nil
}

func (s *Service) duplicate(ctx context.Context, payment *gateways.NormalizedPayment, existing *models.Enrollment) *Result {
	s.logDuplicate(ctx, payment)
	s.persister.RecordSkip(ctx, existing)
	dto := enrollments.ToDTO(existing)
	orderID := ""
	if existing.OrderRef != nil {
		orderID = *existing.OrderRef
	}
	return &Result{Outcome: OutcomeDuplicate, OrderID: orderID, Enrollment: &dto}
}

func (s *Service) logDuplicate(ctx context.Context, payment *gateways.NormalizedPayment) {
	key := payment.PaymentID
	if key == "" {
		key = payment.OrderID
	}
	s.logg.Info(ctx, fmt.Sprintf("Enrollment already exists for payment %s", key))
}

func (s *Service) fastPathSeen(ctx context.Context, paymentRef string) bool {
	if s.events == nil || paymentRef == "" {
		return false
	}
	seen, err := s.events.CheckAndMark(ctx, paymentRef)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("idempotency fast path unavailable: %v", err))
		return false
	}
	return seen
}

func (s *Service) fastPathRelease(ctx context.Context, paymentRef string) {
	if s.events == nil || paymentRef == "" {
		return
	}
	if err := s.events.Delete(ctx, paymentRef); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("release idempotency key: %v", err))
	}
}

func (s *Service) count(payment *gateways.NormalizedPayment, outcome Outcome) {
	if s.metrics == nil {
		return
	}
	gateway := "unknown"
	if payment != nil {
		gateway = payment.Gateway.String()
	}
	s.metrics.IncOutcome(gateway, string(outcome))
}

func orderFromPayment(payment *gateways.NormalizedPayment) *models.Order {
	order := &models.Order{
		ID:         payment.OrderID,
		Gateway:    payment.Gateway,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Status:     payment.Status,
		Notes:      payment.Notes,
		RawPayload: payment.Raw,
	}
	if payment.PaymentID != "" {
		ref := payment.PaymentID
		order.PaymentRef = &ref
	}
	order.CustomerName = payment.Customer.Name
	order.CustomerEmail = payment.Customer.Email
	order.CustomerPhone = payment.Customer.Phone
	return order
}

func paymentFromOrder(order *models.Order) *gateways.NormalizedPayment {
	payment := &gateways.NormalizedPayment{
		Gateway:  order.Gateway,
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Status:   order.Status,
		Notes:    order.Notes,
		Raw:      order.RawPayload,
		Customer: gateways.Customer{
			Name:  order.CustomerName,
			Email: order.CustomerEmail,
			Phone: order.CustomerPhone,
		},
	}
	if order.PaymentRef != nil {
		payment.PaymentID = *order.PaymentRef
	}
	return payment
}
