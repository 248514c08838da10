package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/internal/policy"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/pat1one/faceit-ai-bot/pkg/res"
)

// PolicyHandler отдает платежную политику регионов
type PolicyHandler struct {
	policy *policy.RegionPolicy
	log    *logger.Logger
}

// NewPolicyHandler создает новый обработчик политики регионов
func NewPolicyHandler(p *policy.RegionPolicy, log *logger.Logger) *PolicyHandler {
	return &PolicyHandler{
		policy: p,
		log:    log,
	}
}

// GetPaymentMethods возвращает доступные методы и провайдеров региона
func (h *PolicyHandler) GetPaymentMethods(c *gin.Context) {
	region := c.DefaultQuery("region", "RU")

	cfg, ok := h.policy.GetRegion(region)
	if !ok {
		h.log.Warn("Payment methods requested for unsupported region: %s", region)
		res.JsonResponse(c.Writer, res.ErrorResponse{
			Error: "Unsupported region: " + region,
			Code:  "unsupported_region",
		}, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, cfg)
}
