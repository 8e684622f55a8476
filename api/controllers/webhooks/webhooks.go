package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/cybershaala/academy-backend/api/responses"
	"github.com/cybershaala/academy-backend/internal/gateways"
	"github.com/cybershaala/academy-backend/internal/pipeline"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/metrics"
)

// Signature headers per gateway.
const (
	RazorpaySignatureHeader = "X-Razorpay-Signature"
	PhonePeVerifyHeader     = "X-Verify"
	PaytmChecksumHeader     = "X-Paytm-Checksum"
)

// PipelineService is the single entry point webhooks funnel into.
type PipelineService interface {
	Process(ctx context.Context, payment *gateways.NormalizedPayment, source string) (*pipeline.Result, error)
}

type gatewayEndpoint interface {
	gateways.Verifier
	gateways.Normalizer
}

// RazorpayWebhook handles Razorpay payment and order events.
func RazorpayWebhook(gateway gateways.Razorpay, pipe PipelineService, mets *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return handle(gateway, "razorpay", RazorpaySignatureHeader, "webhook:razorpay", pipe, mets, logg)
}

// PhonePeWebhook handles PhonePe transaction callbacks.
func PhonePeWebhook(gateway gateways.PhonePe, pipe PipelineService, mets *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return handle(gateway, "phonepe", PhonePeVerifyHeader, "webhook:phonepe", pipe, mets, logg)
}

// PaytmWebhook handles Paytm transaction callbacks.
func PaytmWebhook(gateway gateways.Paytm, pipe PipelineService, mets *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return handle(gateway, "paytm", PaytmChecksumHeader, "webhook:paytm", pipe, mets, logg)
}

// handle is the shared webhook flow: verify the signature against the raw
// body, normalize, then run the pipeline. A payload with nothing actionable
// is acknowledged with 200 so the gateway stops retrying. Successful pipeline
// outcomes are counted inside the pipeline; the handler counts the failures
// that never reach it.
func handle(gateway gatewayEndpoint, gatewayName, sigHeader, source string, pipe PipelineService, mets *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if pipe == nil {
			mets.IncOutcome(gatewayName, metrics.OutcomeError)
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pipeline unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			mets.IncOutcome(gatewayName, metrics.OutcomeError)
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if !gateway.VerifySignature(body, r.Header.Get(sigHeader)) {
			mets.IncOutcome(gatewayName, metrics.OutcomeRejected)
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "signature verification failed"))
			return
		}

		payment, err := gateway.Normalize(body)
		if err != nil {
			mets.IncOutcome(gatewayName, metrics.OutcomeError)
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "normalize payload"))
			return
		}

		result, err := pipe.Process(ctx, payment, source)
		if err != nil {
			mets.IncOutcome(gatewayName, metrics.OutcomeError)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		switch result.Outcome {
		case pipeline.OutcomeNoOrder:
			if logg != nil {
				logg.Warn(ctx, "webhook payload carried no order id")
			}
			responses.WriteAck(w, "No order id")
		default:
			responses.WriteAck(w, "")
		}
	}
}
