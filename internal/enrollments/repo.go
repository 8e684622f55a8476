package enrollments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cybershaala/academy-backend/pkg/db"
	"github.com/cybershaala/academy-backend/pkg/db/models"
	"github.com/cybershaala/academy-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an enrollments repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *repository) FindByPaymentRef(ctx context.Context, paymentRef string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).Where("payment_reference = ?", paymentRef).First(&enrollment).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *repository) FindByOrderRef(ctx context.Context, orderRef string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).Where("order_ref = ?", orderRef).First(&enrollment).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *repository) ListByStudent(ctx context.Context, studentID, email string, params pagination.Params) (*EnrollmentList, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if studentID != "" && email != "" {
		query = query.Where("student_id = ? OR student_email = ?", studentID, email)
	} else if studentID != "" {
		query = query.Where("student_id = ?", studentID)
	} else {
		query = query.Where("student_email = ?", email)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Enrollment
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &EnrollmentList{Items: rows}
	if len(rows) > limit {
		list.Items = rows[:limit]
		last := list.Items[len(list.Items)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) CreateWebhookLog(ctx context.Context, entry *models.WebhookLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}
