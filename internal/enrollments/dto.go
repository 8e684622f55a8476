package enrollments

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cybershaala/academy-backend/pkg/db/models"
	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/types"
)

// EnrollmentDTO re-nests the flat enrollment row into the document shape the
// dashboard consumes. Null-valued keys are kept, not omitted.
type EnrollmentDTO struct {
	ID             uuid.UUID          `json:"id"`
	EnrollmentID   string             `json:"enrollmentId"`
	CourseID       *string            `json:"courseId"`
	CourseName     *string            `json:"courseName"`
	StudentDetails StudentDetailsDTO  `json:"studentDetails"`
	Payment        PaymentDTO         `json:"payment"`
	Enrollment     EnrollmentStateDTO `json:"enrollment"`
	Metadata       MetadataDTO        `json:"metadata"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type StudentDetailsDTO struct {
	ID    *string `json:"id"`
	Email *string `json:"email"`
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type PaymentDTO struct {
	Amount    *int64              `json:"amount"`
	Reference *string             `json:"reference"`
	Method    *string             `json:"method"`
	Status    enums.PaymentStatus `json:"status"`
	Raw       json.RawMessage     `json:"raw,omitempty"`
}

type EnrollmentStateDTO struct {
	Status           enums.EnrollmentStatus `json:"status"`
	EnrolledAt       time.Time              `json:"enrolledAt"`
	AccessLevel      enums.AccessLevel      `json:"accessLevel"`
	Progress         int                    `json:"progress"`
	CompletedLessons types.StringList       `json:"completedLessons"`
	LastAccessedAt   *time.Time             `json:"lastAccessedAt"`
}

type MetadataDTO struct {
	Source  string  `json:"source"`
	OrderID *string `json:"orderId"`
}

// ToDTO converts a row to the nested document shape.
func ToDTO(m *models.Enrollment) EnrollmentDTO {
	lessons := m.CompletedLessons
	if lessons == nil {
		lessons = types.StringList{}
	}
	return EnrollmentDTO{
		ID:           m.ID,
		EnrollmentID: m.EnrollmentID,
		CourseID:     m.CourseID,
		CourseName:   m.CourseName,
		StudentDetails: StudentDetailsDTO{
			ID:    m.StudentID,
			Email: m.StudentEmail,
			Name:  m.StudentName,
			Phone: m.StudentPhone,
		},
		Payment: PaymentDTO{
			Amount:    m.PaymentAmount,
			Reference: m.PaymentReference,
			Method:    m.PaymentMethod,
			Status:    m.PaymentStatus,
		},
		Enrollment: EnrollmentStateDTO{
			Status:           m.Status,
			EnrolledAt:       m.EnrolledAt,
			AccessLevel:      m.AccessLevel,
			Progress:         m.Progress,
			CompletedLessons: lessons,
			LastAccessedAt:   m.LastAccessedAt,
		},
		Metadata: MetadataDTO{
			Source:  m.Source,
			OrderID: m.OrderRef,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
