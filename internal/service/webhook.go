package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier posts check-in alerts as JSON to an external automation
// hook (the reception WhatsApp relay).
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the channel in logs.
func (w *WebhookNotifier) Name() string { return "webhook" }

type webhookParty struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
	Department string `json:"department,omitempty"`
}

type webhookPayload struct {
	Event     string       `json:"event"`
	Timestamp string       `json:"timestamp"`
	Visitor   webhookParty `json:"visitor"`
	Host      webhookParty `json:"host"`
	Message   string       `json:"message"`
}

// Notify posts the alert payload. Non-2xx responses are errors.
func (w *WebhookNotifier) Notify(ctx context.Context, alert CheckInAlert) error {
	v := alert.Visitor
	payload := webhookPayload{
		Event:     "VISITOR_CHECK_IN",
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		Visitor: webhookParty{
			Name:    v.FullName,
			Email:   v.Email,
			Phone:   v.PhoneNumber,
			Company: v.Company,
			Purpose: v.Purpose,
		},
		Host: webhookParty{
			Name:       v.HostName,
			Department: v.HostDepartment,
		},
		Message: fmt.Sprintf("Visitor %s from %s has arrived to see %s.", v.FullName, v.Company, v.HostName),
	}
	if alert.Host != nil {
		payload.Host.Email = alert.Host.Email
		if alert.Host.PhoneNumber != nil {
			payload.Host.Phone = *alert.Host.PhoneNumber
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
