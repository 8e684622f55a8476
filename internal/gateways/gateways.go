package gateways

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/types"
)

// Customer carries whatever contact details the gateway event exposed.
// Fields are nil when the event did not include them.
type Customer struct {
	Name  *string
	Email *string
	Phone *string
}

// NormalizedPayment is the canonical tuple every gateway payload is reduced
// to before it enters the pipeline. PaymentID is empty for order-only events
// (an order was created but no payment captured yet).
type NormalizedPayment struct {
	Gateway   enums.Gateway
	PaymentID string
	OrderID   string
	Amount    *int64
	Currency  string
	Status    string
	Method    *string
	Customer  Customer
	Notes     types.JSONMap
	Raw       json.RawMessage
}

// Verifier validates the authenticity of a raw webhook body against the
// signature header the gateway sent.
type Verifier interface {
	VerifySignature(body []byte, header string) bool
}

// Normalizer extracts a NormalizedPayment from a raw webhook body. A nil
// payment with a nil error means the body was parseable but carried no order
// identifier; callers acknowledge those with 200 and make no writes.
type Normalizer interface {
	Normalize(body []byte) (*NormalizedPayment, error)
}

// parseNotes tolerantly decodes a gateway notes blob. Razorpay sends notes as
// an object normally but as an empty array when unset, so anything that is
// not a flat object becomes an empty map.
func parseNotes(raw json.RawMessage) types.JSONMap {
	if len(raw) == 0 {
		return types.JSONMap{}
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return types.JSONMap{}
	}
	out := types.JSONMap{}
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", val), "0"), ".")
		case bool:
			out[k] = fmt.Sprintf("%t", val)
		}
	}
	return out
}

func strPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
