package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/service"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/pat1one/faceit-ai-bot/pkg/res"
)

// SubscriptionHandler обработчик для подписок
type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

// NewSubscriptionHandler создает новый обработчик подписок
func NewSubscriptionHandler(svc service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: svc,
		log:     log,
	}
}

// GetPlans возвращает каталог тарифов подписок
func (h *SubscriptionHandler) GetPlans(c *gin.Context) {
	plans, err := h.service.GetPlans(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetUserSubscription возвращает подписку пользователя.
// Пользователь без записи получает активную FREE подписку.
func (h *SubscriptionHandler) GetUserSubscription(c *gin.Context) {
	userID := c.Param("user_id")

	subscription, err := h.service.GetUserSubscription(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

// subscriptionCreateRequest тело запроса на создание подписки
type subscriptionCreateRequest struct {
	Tier domain.SubscriptionTier `json:"tier" binding:"required"`
}

// CreateSubscription активирует подписку для пользователя
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID := c.Param("user_id")

	var req subscriptionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid subscription request: %v", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{
			Error: "Invalid request: " + err.Error(),
			Code:  "invalid_input",
		}, http.StatusBadRequest)
		return
	}

	subscription, err := h.service.CreateSubscription(c.Request.Context(), userID, req.Tier)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("Activated %s subscription for user %s", subscription.Tier, userID)
	c.JSON(http.StatusCreated, subscription)
}

// CheckFeatureAccess проверяет доступ пользователя к функции
func (h *SubscriptionHandler) CheckFeatureAccess(c *gin.Context) {
	userID := c.Param("user_id")
	feature := c.Param("feature")

	hasAccess := h.service.CheckFeatureAccess(c.Request.Context(), userID, feature)

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"feature": feature,
		"access":  hasAccess,
	})
}

func (h *SubscriptionHandler) respondError(c *gin.Context, err error) {
	status := domain.StatusCodeOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Subscription request failed: %v", err)
	} else {
		h.log.Warn("Subscription request rejected: %v", err)
	}

	res.JsonResponse(c.Writer, res.ErrorResponse{
		Error: domain.MessageOf(err),
		Code:  domain.CodeOf(err),
	}, status)
}
