package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cybershaala/academy-backend/internal/gateways"
	"github.com/cybershaala/academy-backend/internal/pipeline"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/metrics"
)

type fakePipeline struct {
	calls    int
	payments []*gateways.NormalizedPayment
	result   *pipeline.Result
	err      error
}

func (f *fakePipeline) Process(_ context.Context, payment *gateways.NormalizedPayment, _ string) (*pipeline.Result, error) {
	f.calls++
	f.payments = append(f.payments, payment)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &pipeline.Result{Outcome: pipeline.OutcomeEnrolled}, nil
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func razorpayPaymentBody(t *testing.T) []byte {
	t.Helper()
	payload := map[string]any{
		"event": "payment.captured",
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":       "pay_TEST123",
					"order_id": "order_TEST123",
					"amount":   249900,
					"currency": "INR",
					"status":   "captured",
					"email":    "student@example.com",
					"notes":    map[string]any{"courseId": "soc-analyst"},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return body
}

func TestRazorpayWebhook_Success(t *testing.T) {
	gateway := gateways.Razorpay{WebhookSecret: "whsec"}
	pipe := &fakePipeline{}
	handler := RazorpayWebhook(gateway, pipe, nil, nil)

	body := razorpayPaymentBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(RazorpaySignatureHeader, signBody(body, "whsec"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if pipe.calls != 1 {
		t.Fatalf("expected pipeline called once, got %d", pipe.calls)
	}
	if pipe.payments[0] == nil || pipe.payments[0].OrderID != "order_TEST123" {
		t.Fatalf("unexpected normalized payment: %+v", pipe.payments[0])
	}
	var ack struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !ack.OK {
		t.Fatalf("expected ok ack, got %s", rec.Body.String())
	}
}

func TestRazorpayWebhook_InvalidSignature(t *testing.T) {
	gateway := gateways.Razorpay{WebhookSecret: "whsec"}
	pipe := &fakePipeline{}
	handler := RazorpayWebhook(gateway, pipe, nil, nil)

	body := razorpayPaymentBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(RazorpaySignatureHeader, signBody(body, "wrong-secret"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid signature, got %d", rec.Code)
	}
	if pipe.calls != 0 {
		t.Fatalf("pipeline should not run on invalid signature")
	}
}

func TestRazorpayWebhook_NoOrderID(t *testing.T) {
	gateway := gateways.Razorpay{WebhookSecret: "whsec"}
	pipe := &fakePipeline{result: &pipeline.Result{Outcome: pipeline.OutcomeNoOrder}}
	handler := RazorpayWebhook(gateway, pipe, nil, nil)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(RazorpaySignatureHeader, signBody(body, "whsec"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty payload, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "No order id") {
		t.Fatalf("expected no-order-id ack, got %s", rec.Body.String())
	}
	if pipe.calls != 1 {
		t.Fatalf("expected pipeline called once, got %d", pipe.calls)
	}
	if pipe.payments[0] != nil {
		t.Fatalf("expected nil payment for empty payload, got %+v", pipe.payments[0])
	}
}

func TestRazorpayWebhook_MalformedBody(t *testing.T) {
	gateway := gateways.Razorpay{WebhookSecret: "whsec"}
	pipe := &fakePipeline{}
	handler := RazorpayWebhook(gateway, pipe, nil, nil)

	body := []byte(`{"event": "payment.captured",`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(RazorpaySignatureHeader, signBody(body, "whsec"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for malformed body, got %d", rec.Code)
	}
	if pipe.calls != 0 {
		t.Fatalf("pipeline should not run on malformed body")
	}
}

func TestRazorpayWebhook_PipelineFailure(t *testing.T) {
	gateway := gateways.Razorpay{WebhookSecret: "whsec"}
	pipe := &fakePipeline{err: pkgerrors.New(pkgerrors.CodeDependency, "orders store unavailable")}
	handler := RazorpayWebhook(gateway, pipe, nil, nil)

	body := razorpayPaymentBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(RazorpaySignatureHeader, signBody(body, "whsec"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when persistence fails, got %d", rec.Code)
	}
}

func TestPaytmWebhook_SignatureHeader(t *testing.T) {
	gateway := gateways.Paytm{MerchantKey: "merchant-key"}
	pipe := &fakePipeline{}
	handler := PaytmWebhook(gateway, pipe, nil, nil)

	body := []byte("ORDERID=ORD123&TXNID=TXN456&TXNAMOUNT=2499.00&STATUS=TXN_SUCCESS")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paytm", bytes.NewReader(body))
	req.Header.Set(PaytmChecksumHeader, signBody(body, "merchant-key"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if pipe.calls != 1 {
		t.Fatalf("expected pipeline called once, got %d", pipe.calls)
	}
	if pipe.payments[0].OrderID != "ORD123" {
		t.Fatalf("unexpected order id %q", pipe.payments[0].OrderID)
	}
}

func outcomeCount(t *testing.T, reg *prometheus.Registry, gateway, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "webhook_outcomes_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["gateway"] == gateway && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRazorpayWebhook_CountsRejectionsAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	mets := metrics.NewWebhookMetrics(reg)
	gateway := gateways.Razorpay{WebhookSecret: "whsec"}

	rejected := RazorpayWebhook(gateway, &fakePipeline{}, mets, nil)
	body := razorpayPaymentBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(RazorpaySignatureHeader, "bogus")
	rec := httptest.NewRecorder()
	rejected.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := outcomeCount(t, reg, "razorpay", metrics.OutcomeRejected); got != 1 {
		t.Fatalf("expected 1 rejected outcome, got %v", got)
	}

	failing := RazorpayWebhook(gateway, &fakePipeline{err: pkgerrors.New(pkgerrors.CodeDependency, "store down")}, mets, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(RazorpaySignatureHeader, signBody(body, "whsec"))
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := outcomeCount(t, reg, "razorpay", metrics.OutcomeError); got != 1 {
		t.Fatalf("expected 1 error outcome, got %v", got)
	}
}

func TestPhonePeWebhook_MissingHeaderRejected(t *testing.T) {
	gateway := gateways.PhonePe{SaltKey: "salt", SaltIndex: "1"}
	pipe := &fakePipeline{}
	handler := PhonePeWebhook(gateway, pipe, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/phonepe", bytes.NewReader([]byte(`{"response":""}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when X-Verify missing, got %d", rec.Code)
	}
	if pipe.calls != 0 {
		t.Fatalf("pipeline should not run without verification")
	}
}
