package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/types"
)

// Enrollment grants a student access to a course, created from exactly one
// captured payment. The unique indexes on payment_reference and order_ref are
// the hard idempotency backstop behind the pipeline's existence check.
type Enrollment struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EnrollmentID string    `gorm:"column:enrollment_id;not null"`

	CourseID   *string `gorm:"column:course_id"`
	CourseName *string `gorm:"column:course_name"`

	StudentID    *string `gorm:"column:student_id"`
	StudentEmail *string `gorm:"column:student_email"`
	StudentName  *string `gorm:"column:student_name"`
	StudentPhone *string `gorm:"column:student_phone"`

	PaymentAmount    *int64              `gorm:"column:payment_amount"`
	PaymentReference *string             `gorm:"column:payment_reference;uniqueIndex"`
	PaymentMethod    *string             `gorm:"column:payment_method"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;not null;default:'captured'"`
	PaymentRaw       json.RawMessage     `gorm:"column:payment_raw;type:jsonb"`

	Status           enums.EnrollmentStatus `gorm:"column:status;not null;default:'active'"`
	EnrolledAt       time.Time              `gorm:"column:enrolled_at;not null"`
	AccessLevel      enums.AccessLevel      `gorm:"column:access_level;not null;default:'full'"`
	Progress         int                    `gorm:"column:progress;not null;default:0"`
	CompletedLessons types.StringList       `gorm:"column:completed_lessons;type:jsonb;serializer:json"`
	LastAccessedAt   *time.Time             `gorm:"column:last_accessed_at"`

	Source   string  `gorm:"column:source;not null"`
	OrderRef *string `gorm:"column:order_ref;uniqueIndex"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
