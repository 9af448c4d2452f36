package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/guard"
)

const (
	defaultGraphURL     = "https://graph.facebook.com/v21.0"
	defaultTemplateName = "verification_code"
	whatsAppGuardKey    = "whatsapp-cloud"
)

// TACNotifier delivers a verification code to a WhatsApp number.
type TACNotifier interface {
	Send(ctx context.Context, whatsappNumber, code string) domain.DeliveryReport
}

// WhatsAppConfig holds WhatsApp Cloud API settings.
type WhatsAppConfig struct {
	PhoneID      string
	AccessToken  string
	TemplateName string
	BaseURL      string // overridable for tests
}

// WhatsAppClient sends TAC codes as WhatsApp template messages. Without credentials
// it logs the code instead and reports a mock delivery.
type WhatsAppClient struct {
	cfg     WhatsAppConfig
	logger  *slog.Logger
	client  *http.Client
	breaker *guard.CircuitBreaker
}

// NewWhatsAppClient creates a new WhatsApp Cloud API client.
func NewWhatsAppClient(cfg WhatsAppConfig, breaker *guard.CircuitBreaker, logger *slog.Logger) *WhatsAppClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGraphURL
	}
	if cfg.TemplateName == "" {
		cfg.TemplateName = defaultTemplateName
	}
	if breaker == nil {
		breaker = guard.NewCircuitBreaker(5, 30*time.Second)
	}
	return &WhatsAppClient{
		cfg:     cfg,
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
	}
}

// Configured reports whether real delivery is possible.
func (c *WhatsAppClient) Configured() bool {
	return c.cfg.PhoneID != "" && c.cfg.AccessToken != ""
}

// Send delivers code to whatsappNumber. Failures are reported, never returned:
// a lost notification must not undo the TAC request.
func (c *WhatsAppClient) Send(ctx context.Context, whatsappNumber, code string) domain.DeliveryReport {
	if !c.Configured() {
		c.logger.Info("whatsapp not configured, TAC logged instead",
			"whatsapp_number", whatsappNumber, "code", code)
		return domain.DeliveryReport{
			Provider:  "mock",
			Delivered: true,
			Detail:    "WhatsApp API not configured. TAC printed in server logs.",
		}
	}

	if res := c.breaker.Check(ctx, whatsAppGuardKey); !res.Allowed {
		c.logger.Warn("whatsapp circuit open", "reason", res.Reason)
		return domain.DeliveryReport{Provider: whatsAppGuardKey, Delivered: false, Detail: res.Reason}
	}

	detail, err := c.postTemplate(ctx, whatsappNumber, code)
	if err != nil {
		c.breaker.RecordFailure(whatsAppGuardKey)
		c.logger.Error("whatsapp send failed", "whatsapp_number", whatsappNumber, "error", err)
		return domain.DeliveryReport{Provider: whatsAppGuardKey, Delivered: false, Detail: err.Error()}
	}

	c.breaker.RecordSuccess(whatsAppGuardKey)
	return domain.DeliveryReport{Provider: whatsAppGuardKey, Delivered: true, Detail: detail}
}

func (c *WhatsAppClient) postTemplate(ctx context.Context, to, code string) (map[string]interface{}, error) {
	reqBody := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":     c.cfg.TemplateName,
			"language": map[string]string{"code": "en_US"},
			"components": []map[string]interface{}{
				{
					"type":       "body",
					"parameters": []map[string]string{{"type": "text", "text": code}},
				},
			},
		},
	}

	body, _ := json.Marshal(reqBody)
	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("api returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var detail map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return detail, nil
}
