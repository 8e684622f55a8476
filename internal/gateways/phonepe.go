package gateways

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cybershaala/academy-backend/pkg/enums"
)

const phonePeStatusPath = "/pg/v1/status"

// PhonePe verifies and normalizes PhonePe callbacks. The X-Verify header is
// sha256(base64Response + statusPath + saltKey) in hex, then "###" and the
// salt index. AllowUnsigned tolerates a missing header for sandbox traffic.
type PhonePe struct {
	SaltKey       string
	SaltIndex     string
	AllowUnsigned bool
}

type phonePeCallback struct {
	Response string `json:"response"`
}

type phonePeResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MerchantID            string `json:"merchantId"`
		MerchantTransactionID string `json:"merchantTransactionId"`
		TransactionID         string `json:"transactionId"`
		Amount                *int64 `json:"amount"`
		State                 string `json:"state"`
		PaymentInstrument     struct {
			Type string `json:"type"`
		} `json:"paymentInstrument"`
	} `json:"data"`
}

// VerifySignature checks the X-Verify header against the base64 response
// carried in the body. A missing header fails unless AllowUnsigned is set.
func (g PhonePe) VerifySignature(body []byte, header string) bool {
	if header == "" {
		return g.AllowUnsigned
	}
	if g.SaltKey == "" {
		return false
	}

	var callback phonePeCallback
	if err := json.Unmarshal(body, &callback); err != nil {
		return false
	}

	sum := sha256.Sum256([]byte(callback.Response + phonePeStatusPath + g.SaltKey))
	expected := hex.EncodeToString(sum[:]) + "###" + g.SaltIndex
	return subtle.ConstantTimeCompare([]byte(expected), []byte(header)) == 1
}

// Normalize decodes the base64 response blob and extracts the transaction
// identifiers. The merchant transaction id is the order key; the gateway
// status code doubles as the order status.
func (g PhonePe) Normalize(body []byte) (*NormalizedPayment, error) {
	var callback phonePeCallback
	if err := json.Unmarshal(body, &callback); err != nil {
		return nil, fmt.Errorf("decode phonepe payload: %w", err)
	}
	if callback.Response == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(callback.Response)
	if err != nil {
		return nil, fmt.Errorf("decode phonepe response field: %w", err)
	}

	var resp phonePeResponse
	if err := json.Unmarshal(decoded, &resp); err != nil {
		return nil, fmt.Errorf("parse phonepe response: %w", err)
	}
	if resp.Data.MerchantTransactionID == "" {
		return nil, nil
	}

	return &NormalizedPayment{
		Gateway:   enums.GatewayPhonePe,
		PaymentID: resp.Data.TransactionID,
		OrderID:   resp.Data.MerchantTransactionID,
		Amount:    resp.Data.Amount,
		Currency:  "INR",
		Status:    resp.Code,
		Method:    strPtr(resp.Data.PaymentInstrument.Type),
		Notes:     nil,
		Raw:       json.RawMessage(body),
	}, nil
}
