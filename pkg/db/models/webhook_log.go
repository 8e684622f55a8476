package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookLog is an append-only trace of pipeline outcomes. Written
// best-effort next to the enrollment insert; never mutated or deleted.
type WebhookLog struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderRef         *string   `gorm:"column:order_ref"`
	PaymentReference *string   `gorm:"column:payment_reference"`
	Status           string    `gorm:"column:status;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
