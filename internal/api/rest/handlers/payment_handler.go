package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/service"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/pat1one/faceit-ai-bot/pkg/res"
)

// PaymentHandler обработчик для платежей
type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

// NewPaymentHandler создает новый обработчик платежей
func NewPaymentHandler(svc service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		log:     log,
	}
}

// CreatePayment создает новый платеж
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req domain.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid payment request: %v", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{
			Error: "Invalid request: " + err.Error(),
			Code:  "invalid_input",
		}, http.StatusBadRequest)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("Created payment %s for user %s", resp.PaymentID, req.UserID)
	c.JSON(http.StatusOK, resp)
}

// GetPaymentStatus возвращает актуальный статус платежа
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	paymentID := c.Param("id")
	providerName := domain.PaymentProvider(c.DefaultQuery("provider", string(domain.PaymentProviderSBP)))

	resp, err := h.service.CheckStatus(c.Request.Context(), paymentID, providerName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) respondError(c *gin.Context, err error) {
	status := domain.StatusCodeOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Payment request failed: %v", err)
	} else {
		h.log.Warn("Payment request rejected: %v", err)
	}

	res.JsonResponse(c.Writer, res.ErrorResponse{
		Error: domain.MessageOf(err),
		Code:  domain.CodeOf(err),
	}, status)
}
