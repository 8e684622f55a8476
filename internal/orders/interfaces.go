package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/cybershaala/academy-backend/pkg/db/models"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, incoming *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListReconcilable(ctx context.Context, limit, offset int) ([]models.Order, error)
}

// Service records gateway events against orders and exposes reads for the
// reconciliation and admin paths.
type Service interface {
	RecordWebhook(ctx context.Context, incoming *models.Order) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	ListReconcilable(ctx context.Context, limit, offset int) ([]models.Order, error)
}
