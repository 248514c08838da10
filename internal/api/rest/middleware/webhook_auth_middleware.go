package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/pat1one/faceit-ai-bot/pkg/res"
)

// WebhookAuthConfig секреты для проверки подлинности вебхуков
type WebhookAuthConfig struct {
	// TestMode отключает все проверки; только для разработки
	TestMode bool

	// SBPSecret общий секрет, который СБП передает в заголовке X-Webhook-Signature
	SBPSecret string

	// YooKassaShopID и YooKassaSecretKey для Basic-аутентификации YooKassa
	YooKassaShopID    string
	YooKassaSecretKey string
}

// WebhookAuthMiddleware проверяет подлинность вебхука провайдера.
// Неизвестный провайдер пропускается дальше: его отклонит обработчик
// со статусом 400 и осмысленным сообщением.
func WebhookAuthMiddleware(cfg WebhookAuthConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.TestMode {
			c.Next()
			return
		}

		provider := domain.PaymentProvider(c.Param("provider"))

		switch provider {
		case domain.PaymentProviderSBP:
			signature := c.GetHeader("X-Webhook-Signature")
			if cfg.SBPSecret == "" || subtle.ConstantTimeCompare([]byte(signature), []byte(cfg.SBPSecret)) != 1 {
				rejectWebhook(c, provider, log)
				return
			}
		case domain.PaymentProviderYooKassa:
			username, password, ok := c.Request.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(username), []byte(cfg.YooKassaShopID)) != 1 ||
				subtle.ConstantTimeCompare([]byte(password), []byte(cfg.YooKassaSecretKey)) != 1 {
				rejectWebhook(c, provider, log)
				return
			}
		}

		c.Next()
	}
}

func rejectWebhook(c *gin.Context, provider domain.PaymentProvider, log *logger.Logger) {
	log.Warnw("Webhook authentication failed", "provider", string(provider), "ip", c.ClientIP())
	res.JsonResponse(c.Writer, res.ErrorResponse{
		Error: "Invalid webhook signature",
		Code:  "unauthorized",
	}, http.StatusUnauthorized)
	c.Abort()
}
