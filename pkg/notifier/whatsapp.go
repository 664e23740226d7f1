package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"admin-2fa/pkg/utils"

	"go.uber.org/zap"
)

// WhatsApp sends text messages through the Z-API gateway.
type WhatsApp struct {
	baseURL    string
	instanceID string
	token      string
	client     *http.Client
	log        *zap.Logger
}

type sendTextRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func NewWhatsApp(config utils.WhatsAppConfig, log *zap.Logger) *WhatsApp {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WhatsApp{
		baseURL:    config.BaseURL,
		instanceID: config.InstanceID,
		token:      config.Token,
		client:     &http.Client{Timeout: timeout},
		log:        log.With(zap.String("notifier", "whatsapp")),
	}
}

// Send posts a text message to the configured phone number.
func (w *WhatsApp) Send(ctx context.Context, phone, message string) error {
	if w.instanceID == "" || w.token == "" {
		return fmt.Errorf("whatsapp notifier not configured")
	}

	body, err := json.Marshal(sendTextRequest{Phone: phone, Message: message})
	if err != nil {
		return fmt.Errorf("marshal send-text payload: %w", err)
	}

	url := fmt.Sprintf("%s/instances/%s/token/%s/send-text", w.baseURL, w.instanceID, w.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send-text request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Error("Failed to reach WhatsApp gateway", zap.Error(err))
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.log.Error("WhatsApp gateway rejected message", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}

	w.log.Info("WhatsApp message sent", zap.String("phone", phone))
	return nil
}
