package reconcile

import (
	"context"

	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
)

// Job adapts the reconciliation service to the cron worker.
type Job struct {
	service *Service
}

// NewJob wraps the service for scheduled execution.
func NewJob(service *Service) (*Job, error) {
	if service == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service is required")
	}
	return &Job{service: service}, nil
}

// Name identifies the job in logs and metrics.
func (j *Job) Name() string { return "enrollment-reconciliation" }

// Run executes one sweep.
func (j *Job) Run(ctx context.Context) error {
	_, err := j.service.Run(ctx)
	return err
}
