package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/service"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/pat1one/faceit-ai-bot/pkg/res"
)

// WebhookHandler обработчик для вебхуков платежных провайдеров
type WebhookHandler struct {
	paymentService service.PaymentService
	log            *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(paymentService service.PaymentService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		log:            log,
	}
}

// HandleWebhook обрабатывает вебхук провайдера из path-параметра.
// Игнорированный вебхук это тоже 200: провайдер не должен ретраить
// доставку, которую мы сознательно не применили.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	providerName := domain.PaymentProvider(c.Param("provider"))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Error("Failed to read webhook body: %v", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{
			Error: "Failed to read webhook body",
			Code:  "invalid_input",
		}, http.StatusBadRequest)
		return
	}

	outcome, err := h.paymentService.ProcessWebhook(c.Request.Context(), providerName, body)
	if err != nil {
		status := domain.StatusCodeOf(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("Webhook processing failed: %v", err)
		} else {
			h.log.Warn("Webhook rejected: %v", err)
		}
		res.JsonResponse(c.Writer, res.ErrorResponse{
			Error: domain.MessageOf(err),
			Code:  domain.CodeOf(err),
		}, status)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"outcome": outcome,
	})
}
