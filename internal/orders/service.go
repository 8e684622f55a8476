package orders

import (
	"context"

	"github.com/cybershaala/academy-backend/pkg/db/models"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
)

type service struct {
	repo Repository
	logg *logger.Logger
}

// ServiceParams carries the dependencies for the orders service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

// RecordWebhook merge-upserts the order row for an inbound gateway event and
// returns the merged state.
func (s *service) RecordWebhook(ctx context.Context, incoming *models.Order) (*models.Order, error) {
	if incoming == nil || incoming.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !incoming.Gateway.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown gateway")
	}

	merged, err := s.repo.Upsert(ctx, incoming)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert order")
	}

	ctx = s.logg.WithOrderID(ctx, merged.ID)
	s.logg.Info(ctx, "order recorded from webhook")
	return merged, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Order, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) ListReconcilable(ctx context.Context, limit, offset int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListReconcilable(ctx, limit, offset)
}
