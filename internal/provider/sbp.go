package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// SBPConfig конфигурация клиента СБП
type SBPConfig struct {
	APIURL     string
	Token      string
	WebsiteURL string
}

// SBPClient клиент API Системы быстрых платежей
type SBPClient struct {
	cfg        SBPConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewSBPClient создает новый клиент СБП
func NewSBPClient(cfg SBPConfig, log *logger.Logger) *SBPClient {
	return &SBPClient{
		cfg:        cfg,
		httpClient: newHTTPClient(),
		log:        log,
	}
}

// Provider возвращает идентификатор провайдера
func (c *SBPClient) Provider() domain.PaymentProvider {
	return domain.PaymentProviderSBP
}

// Configured сообщает, заданы ли учетные данные СБП
func (c *SBPClient) Configured() bool {
	return c.cfg.APIURL != "" && c.cfg.Token != ""
}

// sbpPaymentResponse ответ API СБП на создание платежа
type sbpPaymentResponse struct {
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

// CreatePayment создает платеж через СБП
func (c *SBPClient) CreatePayment(ctx context.Context, payment domain.Payment) (CreateResult, error) {
	if !c.Configured() {
		return CreateResult{}, fmt.Errorf("%w: sbp", domain.ErrProviderNotConfigured)
	}

	c.log.Debug("Creating SBP payment for user %s", payment.UserID)

	body := map[string]any{
		"order_id":    payment.ID.String(),
		"amount":      fmt.Sprintf("%.2f", payment.Amount),
		"currency":    payment.Currency,
		"description": payment.Description,
		"return_url":  c.cfg.WebsiteURL + "/payment-success",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CreateResult{}, fmt.Errorf("failed to marshal sbp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return CreateResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("SBP payment request failed: %v", err)
		return CreateResult{}, domain.NewGatewayError("sbp", "payment request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("SBP returned status %d", resp.StatusCode)
		return CreateResult{}, domain.NewGatewayError("sbp", "unexpected status "+strconv.Itoa(resp.StatusCode), domain.ErrPaymentGateway)
	}

	var parsed sbpPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return CreateResult{}, domain.NewGatewayError("sbp", "invalid response body", err)
	}

	return CreateResult{
		ProviderPaymentID: parsed.PaymentID,
		PaymentURL:        parsed.PaymentURL,
		Status:            mapSBPStatus(parsed.Status),
	}, nil
}

// CheckStatus запрашивает статус платежа в СБП
func (c *SBPClient) CheckStatus(ctx context.Context, providerPaymentID string) (domain.PaymentStatus, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: sbp", domain.ErrProviderNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"/payments/"+providerPaymentID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewGatewayError("sbp", "status request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewGatewayError("sbp", "unexpected status "+strconv.Itoa(resp.StatusCode), domain.ErrPaymentGateway)
	}

	var parsed sbpPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", domain.NewGatewayError("sbp", "invalid response body", err)
	}

	return mapSBPStatus(parsed.Status), nil
}

// mapSBPStatus переводит статус СБП во внутренний статус платежа
func mapSBPStatus(status string) domain.PaymentStatus {
	switch status {
	case "paid":
		return domain.PaymentStatusCompleted
	case "rejected", "expired":
		return domain.PaymentStatusFailed
	default:
		// created, processing
		return domain.PaymentStatusPending
	}
}
