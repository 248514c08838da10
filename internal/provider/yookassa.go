package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// YooKassaConfig конфигурация клиента YooKassa
type YooKassaConfig struct {
	APIURL     string
	ShopID     string
	SecretKey  string
	WebsiteURL string
}

// YooKassaClient клиент API YooKassa
type YooKassaClient struct {
	cfg        YooKassaConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewYooKassaClient создает новый клиент YooKassa
func NewYooKassaClient(cfg YooKassaConfig, log *logger.Logger) *YooKassaClient {
	return &YooKassaClient{
		cfg:        cfg,
		httpClient: newHTTPClient(),
		log:        log,
	}
}

// Provider возвращает идентификатор провайдера
func (c *YooKassaClient) Provider() domain.PaymentProvider {
	return domain.PaymentProviderYooKassa
}

// Configured сообщает, заданы ли учетные данные магазина
func (c *YooKassaClient) Configured() bool {
	return c.cfg.ShopID != "" && c.cfg.SecretKey != ""
}

// yooKassaAmount сумма в формате YooKassa
type yooKassaAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// yooKassaPaymentResponse ответ API YooKassa на создание платежа
type yooKassaPaymentResponse struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	Amount       yooKassaAmount `json:"amount"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

// CreatePayment создает платеж в YooKassa с редиректом на платежную страницу
func (c *YooKassaClient) CreatePayment(ctx context.Context, payment domain.Payment) (CreateResult, error) {
	if !c.Configured() {
		return CreateResult{}, fmt.Errorf("%w: yookassa", domain.ErrProviderNotConfigured)
	}

	c.log.Debug("Creating YooKassa payment for user %s", payment.UserID)

	body := map[string]any{
		"amount": yooKassaAmount{
			Value:    fmt.Sprintf("%.2f", payment.Amount),
			Currency: payment.Currency,
		},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": c.cfg.WebsiteURL + "/payment-success",
		},
		"capture":     true,
		"description": payment.Description,
		"metadata": map[string]string{
			"payment_id":        payment.ID.String(),
			"user_id":           payment.UserID,
			"subscription_tier": string(payment.SubscriptionTier),
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return CreateResult{}, fmt.Errorf("failed to marshal yookassa request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return CreateResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Ключ идемпотентности: повтор запроса не создаст второй платеж
	req.Header.Set("Idempotence-Key", uuid.NewSHA1(uuid.NameSpaceURL, []byte(payment.ID.String())).String())
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("YooKassa payment request failed: %v", err)
		return CreateResult{}, domain.NewGatewayError("yookassa", "payment request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("YooKassa returned status %d", resp.StatusCode)
		return CreateResult{}, domain.NewGatewayError("yookassa", "unexpected status "+strconv.Itoa(resp.StatusCode), domain.ErrPaymentGateway)
	}

	var parsed yooKassaPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return CreateResult{}, domain.NewGatewayError("yookassa", "invalid response body", err)
	}

	return CreateResult{
		ProviderPaymentID: parsed.ID,
		PaymentURL:        parsed.Confirmation.ConfirmationURL,
		Status:            mapYooKassaStatus(parsed.Status),
	}, nil
}

// CheckStatus запрашивает статус платежа в YooKassa
func (c *YooKassaClient) CheckStatus(ctx context.Context, providerPaymentID string) (domain.PaymentStatus, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: yookassa", domain.ErrProviderNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"/"+providerPaymentID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewGatewayError("yookassa", "status request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewGatewayError("yookassa", "unexpected status "+strconv.Itoa(resp.StatusCode), domain.ErrPaymentGateway)
	}

	var parsed yooKassaPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", domain.NewGatewayError("yookassa", "invalid response body", err)
	}

	return mapYooKassaStatus(parsed.Status), nil
}

// mapYooKassaStatus переводит статус YooKassa во внутренний статус платежа
func mapYooKassaStatus(status string) domain.PaymentStatus {
	switch status {
	case "succeeded":
		return domain.PaymentStatusCompleted
	case "canceled":
		return domain.PaymentStatusFailed
	default:
		// pending, waiting_for_capture
		return domain.PaymentStatusPending
	}
}
