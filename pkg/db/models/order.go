package models

import (
	"encoding/json"
	"time"

	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/types"
)

// Order mirrors a payment-gateway transaction, keyed by the gateway's own
// transaction identifier. Rows are merge-upserted on every webhook and never
// deleted; they double as the audit trail for reconciliation.
type Order struct {
	ID            string          `gorm:"column:id;primaryKey" json:"id"`
	Gateway       enums.Gateway   `gorm:"column:gateway;type:text;not null" json:"gateway"`
	Amount        *int64          `gorm:"column:amount" json:"amount"`
	Currency      string          `gorm:"column:currency;not null;default:'INR'" json:"currency"`
	Status        string          `gorm:"column:status;not null;default:'created'" json:"status"`
	PaymentRef    *string         `gorm:"column:payment_ref" json:"paymentRef"`
	CustomerName  *string         `gorm:"column:customer_name" json:"customerName"`
	CustomerEmail *string         `gorm:"column:customer_email" json:"customerEmail"`
	CustomerPhone *string         `gorm:"column:customer_phone" json:"customerPhone"`
	Notes         types.JSONMap   `gorm:"column:notes;type:jsonb;serializer:json" json:"notes"`
	RawPayload    json.RawMessage `gorm:"column:raw_payload;type:jsonb" json:"-"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
