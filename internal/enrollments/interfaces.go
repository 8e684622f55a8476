package enrollments

import (
	"context"

	"gorm.io/gorm"

	"github.com/cybershaala/academy-backend/pkg/db/models"
	"github.com/cybershaala/academy-backend/pkg/pagination"
)

// Repository defines persistence operations for enrollments and the webhook
// audit log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByPaymentRef(ctx context.Context, paymentRef string) (*models.Enrollment, error)
	FindByOrderRef(ctx context.Context, orderRef string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID, email string, params pagination.Params) (*EnrollmentList, error)
	CreateWebhookLog(ctx context.Context, entry *models.WebhookLog) error
}

// EnrollmentList is one cursor page of enrollments.
type EnrollmentList struct {
	Items      []models.Enrollment
	NextCursor *string
}
