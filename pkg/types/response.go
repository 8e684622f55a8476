package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// WebhookAck is the body returned to payment gateways. Gateways retry on
// non-2xx, so acknowledgements carry a message instead of an error envelope
// whenever processing was intentionally skipped.
type WebhookAck struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
