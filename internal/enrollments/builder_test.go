package enrollments

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybershaala/academy-backend/internal/gateways"
	"github.com/cybershaala/academy-backend/pkg/db/models"
	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/types"
)

var enrollmentIDPattern = regexp.MustCompile(`^ENR_\d+_[0-9A-Z]{6}$`)

func TestNewEnrollmentIDFormat(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewEnrollmentID(now)
		require.Regexp(t, enrollmentIDPattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1, "suffixes should vary")
}

func TestBuildPopulatesDefaults(t *testing.T) {
	now := time.Now()
	payment := &gateways.NormalizedPayment{
		Gateway:   enums.GatewayRazorpay,
		PaymentID: "pay_1",
		OrderID:   "order_1",
	}

	enrollment := Build(payment, nil, "webhook:razorpay", now)

	assert.Equal(t, 0, enrollment.Progress)
	require.NotNil(t, enrollment.CompletedLessons)
	assert.Len(t, enrollment.CompletedLessons, 0)
	assert.Equal(t, enums.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, enums.AccessLevelFull, enrollment.AccessLevel)
	assert.Equal(t, enums.PaymentStatusCaptured, enrollment.PaymentStatus)
	assert.Nil(t, enrollment.LastAccessedAt)
	assert.Equal(t, now, enrollment.EnrolledAt)
	assert.Equal(t, "webhook:razorpay", enrollment.Source)
}

func TestBuildOrderRefResolution(t *testing.T) {
	now := time.Now()
	order := &models.Order{ID: "order_stored", Gateway: enums.GatewayRazorpay}

	withPaymentOrder := Build(&gateways.NormalizedPayment{PaymentID: "p", OrderID: "order_from_payment"}, order, "webhook:razorpay", now)
	require.NotNil(t, withPaymentOrder.OrderRef)
	assert.Equal(t, "order_from_payment", *withPaymentOrder.OrderRef)

	fromStored := Build(&gateways.NormalizedPayment{PaymentID: "p"}, order, "webhook:razorpay", now)
	require.NotNil(t, fromStored.OrderRef)
	assert.Equal(t, "order_stored", *fromStored.OrderRef)

	neither := Build(&gateways.NormalizedPayment{PaymentID: "p"}, nil, "webhook:razorpay", now)
	assert.Nil(t, neither.OrderRef)
}

func TestBuildAmountFallsBackToOrder(t *testing.T) {
	now := time.Now()
	amount := int64(9900)
	order := &models.Order{ID: "o", Amount: &amount}

	enrollment := Build(&gateways.NormalizedPayment{PaymentID: "p", OrderID: "o"}, order, "reconciliation", now)
	require.NotNil(t, enrollment.PaymentAmount)
	assert.Equal(t, amount, *enrollment.PaymentAmount)
}

func TestBuildCustomerPrecedence(t *testing.T) {
	now := time.Now()
	orderEmail := "order@x.in"
	paymentEmail := "payment@x.in"
	order := &models.Order{
		ID:            "o",
		CustomerEmail: &orderEmail,
		Notes:         types.JSONMap{"email": "notes@x.in", "name": "Notes Name"},
	}
	payment := &gateways.NormalizedPayment{
		PaymentID: "p",
		OrderID:   "o",
		Customer:  gateways.Customer{Email: &paymentEmail},
	}

	enrollment := Build(payment, order, "webhook:razorpay", now)

	require.NotNil(t, enrollment.StudentEmail)
	assert.Equal(t, orderEmail, *enrollment.StudentEmail, "stored order customer wins")
	require.NotNil(t, enrollment.StudentName)
	assert.Equal(t, "Notes Name", *enrollment.StudentName, "notes fill gaps the order left")

	noOrderCustomer := Build(payment, &models.Order{ID: "o"}, "webhook:razorpay", now)
	require.NotNil(t, noOrderCustomer.StudentEmail)
	assert.Equal(t, paymentEmail, *noOrderCustomer.StudentEmail, "payment contact is second")
}

func TestBuildCourseFromSnakeCaseNotes(t *testing.T) {
	now := time.Now()
	order := &models.Order{ID: "o", Notes: types.JSONMap{"course_id": "c9", "course_name": "Network Defense"}}

	enrollment := Build(&gateways.NormalizedPayment{PaymentID: "p", OrderID: "o"}, order, "webhook:paytm", now)
	require.NotNil(t, enrollment.CourseID)
	assert.Equal(t, "c9", *enrollment.CourseID)
	require.NotNil(t, enrollment.CourseName)
	assert.Equal(t, "Network Defense", *enrollment.CourseName)
}
