package enrollments

import (
	"context"
	"fmt"

	"github.com/cybershaala/academy-backend/pkg/db"
	"github.com/cybershaala/academy-backend/pkg/db/models"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/pagination"
)

const (
	auditStatusCreated   = "enrollment_created"
	auditStatusDuplicate = "duplicate_skipped"
)

// Persister owns the durable write. The insert is the primary operation; the
// audit log entry after it is advisory and its failure never propagates.
type Persister struct {
	repo Repository
	logg *logger.Logger
}

// PersisterParams carries the dependencies for the persister.
type PersisterParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// NewPersister builds the enrollment persister.
func NewPersister(params PersisterParams) (*Persister, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "enrollments repository is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Persister{repo: params.Repo, logg: params.Logger}, nil
}

// Persist appends the enrollment. A unique violation on payment_reference or
// order_ref means a concurrent delivery won the race; the existing row is
// returned and created is false. Either way one audit log entry is written
// best-effort.
func (p *Persister) Persist(ctx context.Context, enrollment *models.Enrollment) (result *models.Enrollment, created bool, err error) {
	if enrollment == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "enrollment is required")
	}

	insertErr := p.repo.Create(ctx, enrollment)
	switch {
	case insertErr == nil:
		result, created = enrollment, true
	case db.IsUniqueViolation(insertErr):
		existing, lookupErr := p.findExisting(ctx, enrollment)
		if lookupErr != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "lookup after duplicate insert")
		}
		if existing == nil {
			// The winning row vanished between insert and lookup; surface
			// the original violation so the gateway retries.
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, insertErr, "insert enrollment")
		}
		p.logg.Info(ctx, fmt.Sprintf("duplicate enrollment insert for %s resolved to %s", enrollment.EnrollmentID, existing.EnrollmentID))
		result, created = existing, false
	default:
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, insertErr, "insert enrollment")
	}

	p.writeAuditLog(ctx, result, created)
	return result, created, nil
}

// RecordSkip writes a duplicate-skip audit entry for a guard hit that never
// reached the insert.
func (p *Persister) RecordSkip(ctx context.Context, existing *models.Enrollment) {
	if existing == nil {
		return
	}
	p.writeAuditLog(ctx, existing, false)
}

// ListByStudent returns the student's enrollments as nested documents.
func (p *Persister) ListByStudent(ctx context.Context, studentID, email string, params pagination.Params) ([]EnrollmentDTO, *string, error) {
	if studentID == "" && email == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "student identity is required")
	}
	list, err := p.repo.ListByStudent(ctx, studentID, email, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list enrollments")
	}
	dtos := make([]EnrollmentDTO, 0, len(list.Items))
	for i := range list.Items {
		dtos = append(dtos, ToDTO(&list.Items[i]))
	}
	return dtos, list.NextCursor, nil
}

func (p *Persister) findExisting(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, error) {
	if enrollment.PaymentReference != nil {
		found, err := p.repo.FindByPaymentRef(ctx, *enrollment.PaymentReference)
		if err != nil || found != nil {
			return found, err
		}
	}
	if enrollment.OrderRef != nil {
		return p.repo.FindByOrderRef(ctx, *enrollment.OrderRef)
	}
	return nil, nil
}

func (p *Persister) writeAuditLog(ctx context.Context, enrollment *models.Enrollment, created bool) {
	status := auditStatusCreated
	if !created {
		status = auditStatusDuplicate
	}
	entry := &models.WebhookLog{
		OrderRef:         enrollment.OrderRef,
		PaymentReference: enrollment.PaymentReference,
		Status:           status,
	}
	if err := p.repo.CreateWebhookLog(ctx, entry); err != nil {
		p.logg.Warn(ctx, fmt.Sprintf("webhook audit log write failed: %v", err))
	}
}
