package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cybershaala/academy-backend/internal/enrollments"
	"github.com/cybershaala/academy-backend/pkg/config"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
)

// Trigger posts a form-encoded summary of a fresh enrollment to the site's
// form-intake endpoint, which drives the welcome email. Every failure is
// swallowed after logging; the enrollment is already durable by the time this
// runs and the gateway must still get its 200.
type Trigger struct {
	intakeURL string
	timeout   time.Duration
	client    *http.Client
	logg      *logger.Logger
}

// TriggerParams carries the dependencies for the notification trigger.
type TriggerParams struct {
	Config config.NotifyConfig
	Client *http.Client
	Logger *logger.Logger
}

// NewTrigger builds the notification trigger. An empty intake URL disables
// dispatch entirely.
func NewTrigger(params TriggerParams) (*Trigger, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	timeout := params.Config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Trigger{
		intakeURL: params.Config.IntakeURL,
		timeout:   timeout,
		client:    client,
		logg:      params.Logger,
	}, nil
}

// Dispatch fires the notification asynchronously. The goroutine gets its own
// deadline so it survives the webhook request context ending.
func (t *Trigger) Dispatch(enrollment enrollments.EnrollmentDTO) {
	if t.intakeURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.send(ctx, enrollment); err != nil {
			t.logg.Warn(ctx, fmt.Sprintf("welcome notification failed for %s: %v", enrollment.EnrollmentID, err))
		}
	}()
}

func (t *Trigger) send(ctx context.Context, enrollment enrollments.EnrollmentDTO) error {
	form := url.Values{}
	form.Set("form-name", "enrollment-welcome")
	form.Set("enrollmentId", enrollment.EnrollmentID)
	if enrollment.StudentDetails.Name != nil {
		form.Set("name", *enrollment.StudentDetails.Name)
	}
	if enrollment.StudentDetails.Email != nil {
		form.Set("email", *enrollment.StudentDetails.Email)
	}
	if enrollment.CourseName != nil {
		form.Set("courseName", *enrollment.CourseName)
	}
	if enrollment.Payment.Amount != nil {
		rupees := decimal.NewFromInt(*enrollment.Payment.Amount).Div(decimal.NewFromInt(100))
		form.Set("amount", rupees.StringFixed(2))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.intakeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("intake endpoint answered %d", resp.StatusCode)
	}
	return nil
}
