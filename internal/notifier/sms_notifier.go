package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
)

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SMSSender posts confirmations to the Africa's Talking messaging API.
type SMSSender struct {
	cfg    config.AfricaTalkingConfig
	client *http.Client
}

func NewSMSSender(cfg config.AfricaTalkingConfig, client *http.Client) *SMSSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SMSSender{cfg: cfg, client: client}
}

func (s *SMSSender) Channel() string { return "sms" }

func (s *SMSSender) Send(ctx context.Context, conf OrderConfirmation) error {
	if conf.Phone == "" {
		return errors.New("recipient phone number is empty")
	}

	message := fmt.Sprintf("Order #%d confirmed: %d item(s), total KES %.2f.", conf.OrderID, len(conf.Items), conf.Total)
	if conf.ExpectedDelivery != "" {
		message += " Expected delivery " + conf.ExpectedDelivery + "."
	}

	data := url.Values{}
	data.Set("username", s.cfg.Username)
	data.Set("to", conf.Phone)
	data.Set("message", message)
	data.Set("from", s.cfg.SenderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS send failed: %w", err)
	}
	defer resp.Body.Close()

	var smsResp SMSResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		if decodeErr == nil && smsResp.SMSMessageData.Message != "" {
			return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, smsResp.SMSMessageData.Message)
		}
		return fmt.Errorf("SMS API returned non-success status: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode SMS response: %w", decodeErr)
	}
	return nil
}
