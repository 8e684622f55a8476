package gateways

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cybershaala/academy-backend/pkg/enums"
)

// Razorpay verifies and normalizes Razorpay webhook events. The signature is
// a hex HMAC-SHA256 of the raw body keyed with the webhook secret, delivered
// in the X-Razorpay-Signature header.
type Razorpay struct {
	WebhookSecret string
}

type razorpayPaymentEntity struct {
	ID       string          `json:"id"`
	OrderID  string          `json:"order_id"`
	Amount   *int64          `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
	Method   string          `json:"method"`
	Email    string          `json:"email"`
	Contact  string          `json:"contact"`
	Notes    json.RawMessage `json:"notes"`
}

type razorpayOrderEntity struct {
	ID       string          `json:"id"`
	Amount   *int64          `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
	Notes    json.RawMessage `json:"notes"`
}

type razorpayEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity *razorpayPaymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity *razorpayOrderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// VerifySignature checks the hex HMAC-SHA256 of the body against the header.
func (g Razorpay) VerifySignature(body []byte, header string) bool {
	if header == "" || g.WebhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// Normalize extracts the canonical payment tuple. The payment entity is
// authoritative when present; an order-only event yields no payment id. When
// neither entity is present the event carries nothing actionable and nil is
// returned without error.
func (g Razorpay) Normalize(body []byte) (*NormalizedPayment, error) {
	var envelope razorpayEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode razorpay payload: %w", err)
	}

	status := envelope.Event

	if payment := envelope.Payload.Payment.Entity; payment != nil {
		if status == "" {
			status = payment.Status
		}
		return &NormalizedPayment{
			Gateway:   enums.GatewayRazorpay,
			PaymentID: payment.ID,
			OrderID:   payment.OrderID,
			Amount:    payment.Amount,
			Currency:  payment.Currency,
			Status:    status,
			Method:    strPtr(payment.Method),
			Customer: Customer{
				Email: strPtr(payment.Email),
				Phone: strPtr(payment.Contact),
			},
			Notes: parseNotes(payment.Notes),
			Raw:   json.RawMessage(body),
		}, nil
	}

	if order := envelope.Payload.Order.Entity; order != nil {
		if status == "" {
			status = order.Status
		}
		return &NormalizedPayment{
			Gateway:  enums.GatewayRazorpay,
			OrderID:  order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
			Status:   status,
			Notes:    parseNotes(order.Notes),
			Raw:      json.RawMessage(body),
		}, nil
	}

	return nil, nil
}
