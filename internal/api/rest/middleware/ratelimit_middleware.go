package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/metrics"
	"github.com/pat1one/faceit-ai-bot/internal/ratelimit"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/pat1one/faceit-ai-bot/pkg/res"
)

// RateLimitMiddleware отклоняет запросы сверх скользящих лимитов.
// Идентификатор: ID пользователя из JWT, иначе IP клиента, поэтому
// middleware должен стоять после OptionalAuth/RequireAuth.
func RateLimitMiddleware(limiter *ratelimit.Limiter, m metrics.PaymentMetrics, operation string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)

		if err := limiter.Check(c.Request.Context(), identity, operation); err != nil {
			if m != nil {
				m.IncRateLimited(operation)
			}
			log.Warnw("Rate limit exceeded", "identity", identity, "operation", operation)
			res.JsonResponse(c.Writer, res.ErrorResponse{
				Error: domain.MessageOf(err),
				Code:  domain.CodeOf(err),
			}, domain.StatusCodeOf(err))
			c.Abort()
			return
		}

		c.Next()
	}
}
