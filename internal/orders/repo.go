package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/cybershaala/academy-backend/pkg/db"
	"github.com/cybershaala/academy-backend/pkg/db/models"
)

// reconcilableStatuses are the order lifecycle states a paid-but-unenrolled
// order can be stuck in. Gateway-specific status strings embed the captured
// and paid tokens (payment.captured, PAYMENT_SUCCESS etc) so a LIKE match
// covers them.
var reconcilableStatuses = []string{"created", "paid", "captured"}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert merge-writes the incoming order row. Existing fields are only
// overwritten by non-empty incoming values; notes are merged key-wise. Rows
// are never deleted.
func (r *repository) Upsert(ctx context.Context, incoming *models.Order) (*models.Order, error) {
	var existing models.Order
	err := r.db.WithContext(ctx).Where("id = ?", incoming.ID).First(&existing).Error
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, err
		}
		if err := r.db.WithContext(ctx).Create(incoming).Error; err != nil {
			return nil, err
		}
		return incoming, nil
	}

	updates, err := mergeUpdates(&existing, incoming)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var merged models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", incoming.ID).First(&merged).Error; err != nil {
		return nil, err
	}
	return &merged, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListReconcilable(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status IN ? OR status LIKE ? OR status LIKE ?",
			reconcilableStatuses, "%captured%", "%paid%").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func mergeUpdates(existing, incoming *models.Order) (map[string]any, error) {
	updates := map[string]any{}
	if incoming.Status != "" && incoming.Status != existing.Status {
		updates["status"] = incoming.Status
	}
	if incoming.Amount != nil {
		updates["amount"] = *incoming.Amount
	}
	if incoming.Currency != "" && incoming.Currency != existing.Currency {
		updates["currency"] = incoming.Currency
	}
	if incoming.PaymentRef != nil {
		updates["payment_ref"] = *incoming.PaymentRef
	}
	if incoming.CustomerName != nil {
		updates["customer_name"] = *incoming.CustomerName
	}
	if incoming.CustomerEmail != nil {
		updates["customer_email"] = *incoming.CustomerEmail
	}
	if incoming.CustomerPhone != nil {
		updates["customer_phone"] = *incoming.CustomerPhone
	}
	if len(incoming.Notes) > 0 {
		// Map-based Updates bypass the model's json serializer, so the
		// merged notes have to be marshalled by hand.
		buf, err := json.Marshal(existing.Notes.Merge(incoming.Notes))
		if err != nil {
			return nil, fmt.Errorf("marshal merged notes: %w", err)
		}
		updates["notes"] = string(buf)
	}
	if len(incoming.RawPayload) > 0 {
		updates["raw_payload"] = string(incoming.RawPayload)
	}
	return updates, nil
}
