package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"servewise-backend/utilities"
)

type SendGridConfig struct {
	APIKey        string
	BaseURL       string
	FromEmail     string
	FromName      string
	Timeout       time.Duration
	MaxRetries    int
	RatePerSecond float64
	Burst         int
}

// SendGridNotifier sends one email per recipient through the SendGrid v3
// mail API, paced by a token bucket so a large fan-out does not trip the
// provider's rate limits.
type SendGridNotifier struct {
	cfg        SendGridConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *utilities.Logger
}

func NewSendGridNotifier(cfg SendGridConfig, log *utilities.Logger) (*SendGridNotifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid: missing api key")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("sendgrid: missing from email")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &SendGridNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		log:        log.With("notifier", "sendgrid"),
	}, nil
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
}

// HTTPError is a non-2xx answer from SendGrid.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (n *SendGridNotifier) NotifyLessonsAssigned(ctx context.Context, event LessonsAssigned) error {
	subject, body := renderLessonsAssigned(event)
	var errs []error
	for _, r := range event.Recipients {
		if strings.TrimSpace(r.Email) == "" {
			continue
		}
		if err := n.limiter.Wait(ctx); err != nil {
			return errors.Join(append(errs, err)...)
		}
		msg := mailSendRequest{
			Personalizations: []personalization{{To: []emailAddress{{Email: r.Email, Name: r.Name}}}},
			From:             emailAddress{Email: n.cfg.FromEmail, Name: n.cfg.FromName},
			Subject:          subject,
			Content:          []mailContent{{Type: "text/plain", Value: body}},
			Categories:       []string{"lessons_assigned"},
		}
		if err := n.send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Email, err))
		}
	}
	return errors.Join(errs...)
}

func (n *SendGridNotifier) send(ctx context.Context, msg mailSendRequest) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	backoff := 200 * time.Millisecond
	for attempt := 0; ; attempt++ {
		err := n.sendOnce(ctx, payload)
		var httpErr *HTTPError
		if err == nil || !errors.As(err, &httpErr) || !httpErr.retryable() || attempt >= n.cfg.MaxRetries {
			return err
		}
		n.log.Warn("sendgrid request retrying", "attempt", attempt+1, "status", httpErr.StatusCode)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (n *SendGridNotifier) sendOnce(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return nil
}

func renderLessonsAssigned(event LessonsAssigned) (string, string) {
	subject := "New training lessons are ready"
	if event.RestaurantName != "" {
		subject = fmt.Sprintf("New training lessons at %s", event.RestaurantName)
	}
	var b strings.Builder
	b.WriteString("New lessons have been added to your training plan:\n\n")
	for _, l := range event.Lessons {
		fmt.Fprintf(&b, "  - %s (%s)\n", l.Title, l.Category)
	}
	b.WriteString("\nOpen the training app to get started.\n")
	return subject, b.String()
}
