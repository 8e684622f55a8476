package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cybershaala/academy-backend/internal/enrollments"
	"github.com/cybershaala/academy-backend/internal/orders"
	"github.com/cybershaala/academy-backend/internal/pipeline"
	"github.com/cybershaala/academy-backend/pkg/db/models"
	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/types"
)

func setupReconcileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  gateway TEXT NOT NULL,
  amount INTEGER,
  currency TEXT NOT NULL DEFAULT 'INR',
  status TEXT NOT NULL DEFAULT 'created',
  payment_ref TEXT,
  customer_name TEXT,
  customer_email TEXT,
  customer_phone TEXT,
  notes TEXT,
  raw_payload TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS enrollments (
  id TEXT PRIMARY KEY,
  enrollment_id TEXT NOT NULL,
  course_id TEXT,
  course_name TEXT,
  student_id TEXT,
  student_email TEXT,
  student_name TEXT,
  student_phone TEXT,
  payment_amount INTEGER,
  payment_reference TEXT,
  payment_method TEXT,
  payment_status TEXT NOT NULL DEFAULT 'captured',
  payment_raw TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  enrolled_at DATETIME NOT NULL,
  access_level TEXT NOT NULL DEFAULT 'full',
  progress INTEGER NOT NULL DEFAULT 0,
  completed_lessons TEXT,
  last_accessed_at DATETIME,
  source TEXT NOT NULL,
  order_ref TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_enrollments_payment_reference ON enrollments (payment_reference);
CREATE UNIQUE INDEX IF NOT EXISTS uq_enrollments_order_ref ON enrollments (order_ref);
CREATE TABLE IF NOT EXISTS webhook_logs (
  id TEXT PRIMARY KEY,
  order_ref TEXT,
  payment_reference TEXT,
  status TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, gdb.Exec(schema).Error)
	return gdb
}

type reconcileHarness struct {
	gdb       *gorm.DB
	orderRepo orders.Repository
	orderSvc  orders.Service
	guard     *enrollments.Guard
	pipeline  *pipeline.Service
	logg      *logger.Logger
}

func newReconcileHarness(t *testing.T) *reconcileHarness {
	t.Helper()

	gdb := setupReconcileTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test"})

	orderRepo := orders.NewRepository(gdb)
	orderSvc, err := orders.NewService(orders.ServiceParams{Repo: orderRepo, Logger: logg})
	require.NoError(t, err)

	enrollRepo := enrollments.NewRepository(gdb)
	guard, err := enrollments.NewGuard(enrollRepo)
	require.NoError(t, err)
	persister, err := enrollments.NewPersister(enrollments.PersisterParams{Repo: enrollRepo, Logger: logg})
	require.NoError(t, err)

	pipe, err := pipeline.NewService(pipeline.ServiceParams{
		Orders:    orderSvc,
		Guard:     guard,
		Persister: persister,
		Logger:    logg,
	})
	require.NoError(t, err)

	return &reconcileHarness{
		gdb:       gdb,
		orderRepo: orderRepo,
		orderSvc:  orderSvc,
		guard:     guard,
		pipeline:  pipe,
		logg:      logg,
	}
}

func (h *reconcileHarness) seedOrder(t *testing.T, id, status, paymentRef string) {
	t.Helper()
	order := &models.Order{
		ID:      id,
		Gateway: enums.GatewayRazorpay,
		Status:  status,
		Notes:   types.JSONMap{"courseId": "c1"},
	}
	if paymentRef != "" {
		order.PaymentRef = &paymentRef
	}
	_, err := h.orderRepo.Upsert(context.Background(), order)
	require.NoError(t, err)
}

func (h *reconcileHarness) seedEnrollment(t *testing.T, paymentRef, orderRef string) {
	t.Helper()
	e := &models.Enrollment{
		EnrollmentID:     enrollments.NewEnrollmentID(time.Now()),
		PaymentStatus:    enums.PaymentStatusCaptured,
		Status:           enums.EnrollmentStatusActive,
		EnrolledAt:       time.Now(),
		AccessLevel:      enums.AccessLevelFull,
		CompletedLessons: types.StringList{},
		Source:           "webhook:razorpay",
	}
	if paymentRef != "" {
		e.PaymentReference = &paymentRef
	}
	if orderRef != "" {
		e.OrderRef = &orderRef
	}
	require.NoError(t, enrollments.NewRepository(h.gdb).Create(context.Background(), e))
}

func TestDetectMissing(t *testing.T) {
	h := newReconcileHarness(t)
	ctx := context.Background()

	h.seedOrder(t, "order_missing", "captured", "pay_missing")
	h.seedOrder(t, "order_by_payment", "captured", "pay_enrolled")
	h.seedEnrollment(t, "pay_enrolled", "")
	h.seedOrder(t, "order_by_ref", "paid", "")
	h.seedEnrollment(t, "pay_other", "order_by_ref")
	h.seedOrder(t, "order_failed", "failed", "")

	svc, err := NewService(ServiceParams{
		Orders: h.orderSvc,
		Guard:  h.guard,
		Logger: h.logg,
	})
	require.NoError(t, err)

	missing, err := svc.DetectMissing(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "order_missing", missing[0].OrderID)
}

func TestRunWithReprocess(t *testing.T) {
	h := newReconcileHarness(t)
	ctx := context.Background()

	h.seedOrder(t, "order_a", "captured", "pay_a")
	h.seedOrder(t, "order_b", "paid", "pay_b")
	h.seedEnrollment(t, "pay_b", "order_b")

	svc, err := NewService(ServiceParams{
		Orders:    h.orderSvc,
		Guard:     h.guard,
		Pipeline:  h.pipeline,
		Reprocess: true,
		BatchSize: 10,
		Logger:    h.logg,
	})
	require.NoError(t, err)

	summary, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Missing)
	assert.Equal(t, 1, summary.Reprocessed)

	var count int64
	require.NoError(t, h.gdb.Model(&models.Enrollment{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	again, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Missing, "a reprocessed order is no longer missing")
}

func TestRunDetectOnly(t *testing.T) {
	h := newReconcileHarness(t)

	h.seedOrder(t, "order_c", "captured", "pay_c")

	svc, err := NewService(ServiceParams{
		Orders: h.orderSvc,
		Guard:  h.guard,
		Logger: h.logg,
	})
	require.NoError(t, err)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Missing)
	assert.Equal(t, 0, summary.Reprocessed)

	var count int64
	require.NoError(t, h.gdb.Model(&models.Enrollment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "detect-only mode must not write")
}
