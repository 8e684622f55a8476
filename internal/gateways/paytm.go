package gateways

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/cybershaala/academy-backend/pkg/enums"
	"github.com/cybershaala/academy-backend/pkg/types"
)

// Paytm verifies and normalizes Paytm transaction callbacks. Bodies arrive
// form-encoded with uppercase keys; TXNAMOUNT is in rupees and is converted
// to paise. The checksum is a hex HMAC-SHA256 of the raw body keyed with the
// merchant key, delivered in the X-Paytm-Checksum header.
type Paytm struct {
	MerchantKey string
}

// VerifySignature checks the hex HMAC-SHA256 of the body against the header.
func (g Paytm) VerifySignature(body []byte, header string) bool {
	if header == "" || g.MerchantKey == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.MerchantKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// Normalize parses the form body. ORDERID is the order key and TXNID the
// payment reference; a body without ORDERID carries nothing actionable.
func (g Paytm) Normalize(body []byte) (*NormalizedPayment, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse paytm form body: %w", err)
	}

	orderID := values.Get("ORDERID")
	if orderID == "" {
		return nil, nil
	}

	var amount *int64
	if raw := values.Get("TXNAMOUNT"); raw != "" {
		rupees, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse paytm amount %q: %w", raw, err)
		}
		paise := rupees.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		amount = &paise
	}

	currency := values.Get("CURRENCY")
	if currency == "" {
		currency = "INR"
	}

	notes := types.JSONMap{}
	if respCode := values.Get("RESPCODE"); respCode != "" {
		notes["respCode"] = respCode
	}
	if respMsg := values.Get("RESPMSG"); respMsg != "" {
		notes["respMsg"] = respMsg
	}

	raw, err := json.Marshal(flattenValues(values))
	if err != nil {
		return nil, fmt.Errorf("encode paytm payload: %w", err)
	}

	return &NormalizedPayment{
		Gateway:   enums.GatewayPaytm,
		PaymentID: values.Get("TXNID"),
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		Status:    values.Get("STATUS"),
		Method:    strPtr(values.Get("PAYMENTMODE")),
		Customer: Customer{
			Email: strPtr(values.Get("EMAIL")),
			Phone: strPtr(values.Get("MOBILE_NO")),
		},
		Notes: notes,
		Raw:   raw,
	}, nil
}

func flattenValues(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key := range values {
		out[key] = values.Get(key)
	}
	return out
}
