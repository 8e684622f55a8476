package enrollments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cybershaala/academy-backend/internal/gateways"
	"github.com/cybershaala/academy-backend/pkg/db/models"
	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/types"
)

const enrollmentIDSuffixLen = 6

var base36Max = new(big.Int).Exp(big.NewInt(36), big.NewInt(enrollmentIDSuffixLen), nil)

// NewEnrollmentID mints a human-readable id of the form
// ENR_<epochMillis>_<6 uppercase base36 chars>. Uniqueness is not guaranteed
// here; duplicate protection lives on the payment-reference and order-ref
// unique indexes.
func NewEnrollmentID(now time.Time) string {
	n, err := rand.Int(rand.Reader, base36Max)
	if err != nil {
		n = big.NewInt(now.UnixNano() % base36Max.Int64())
	}
	suffix := strings.ToUpper(n.Text(36))
	for len(suffix) < enrollmentIDSuffixLen {
		suffix = "0" + suffix
	}
	return fmt.Sprintf("ENR_%d_%s", now.UnixMilli(), suffix)
}

// Build constructs a complete enrollment row from a normalized payment and
// the stored order context. Pure function, no I/O; every documented field is
// populated so downstream readers stay schema-stable.
func Build(payment *gateways.NormalizedPayment, order *models.Order, source string, now time.Time) *models.Enrollment {
	notes := types.JSONMap{}
	if order != nil {
		notes = notes.Merge(order.Notes)
	}
	if payment != nil {
		notes = notes.Merge(payment.Notes)
	}

	enrollment := &models.Enrollment{
		EnrollmentID:     NewEnrollmentID(now),
		CourseID:         noteValue(notes, "courseId", "course_id"),
		CourseName:       noteValue(notes, "courseName", "course_name"),
		PaymentStatus:    enums.PaymentStatusCaptured,
		Status:           enums.EnrollmentStatusActive,
		EnrolledAt:       now,
		AccessLevel:      enums.AccessLevelFull,
		Progress:         0,
		CompletedLessons: types.StringList{},
		Source:           source,
	}

	if payment != nil {
		if payment.PaymentID != "" {
			ref := payment.PaymentID
			enrollment.PaymentReference = &ref
		}
		enrollment.PaymentMethod = payment.Method
		enrollment.PaymentRaw = payment.Raw
		enrollment.PaymentAmount = payment.Amount
	}
	if enrollment.PaymentAmount == nil && order != nil {
		enrollment.PaymentAmount = order.Amount
	}

	switch {
	case payment != nil && payment.OrderID != "":
		ref := payment.OrderID
		enrollment.OrderRef = &ref
	case order != nil && order.ID != "":
		ref := order.ID
		enrollment.OrderRef = &ref
	}

	enrollment.StudentEmail = resolveField(
		orderField(order, func(o *models.Order) *string { return o.CustomerEmail }),
		paymentField(payment, func(c gateways.Customer) *string { return c.Email }),
		noteValue(notes, "email"),
	)
	enrollment.StudentPhone = resolveField(
		orderField(order, func(o *models.Order) *string { return o.CustomerPhone }),
		paymentField(payment, func(c gateways.Customer) *string { return c.Phone }),
		noteValue(notes, "phone"),
	)
	enrollment.StudentName = resolveField(
		orderField(order, func(o *models.Order) *string { return o.CustomerName }),
		paymentField(payment, func(c gateways.Customer) *string { return c.Name }),
		noteValue(notes, "name"),
	)
	enrollment.StudentID = noteValue(notes, "studentId", "student_id")

	return enrollment
}

// resolveField returns the first non-nil candidate. The precedence order is
// stored order customer, then payment-level contact, then notes.
func resolveField(candidates ...*string) *string {
	for _, candidate := range candidates {
		if candidate != nil && *candidate != "" {
			return candidate
		}
	}
	return nil
}

func noteValue(notes types.JSONMap, keys ...string) *string {
	for _, key := range keys {
		if value, ok := notes[key]; ok && value != "" {
			v := value
			return &v
		}
	}
	return nil
}

func orderField(order *models.Order, pick func(*models.Order) *string) *string {
	if order == nil {
		return nil
	}
	return pick(order)
}

func paymentField(payment *gateways.NormalizedPayment, pick func(gateways.Customer) *string) *string {
	if payment == nil {
		return nil
	}
	return pick(payment.Customer)
}
