package middlewares

import (
	"context"

	"bitbucket.org/mmdatafocus/livemall_catalog/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShopContext extracts the caller identity headers into the request context.
// Authentication/authorization happen upstream at the API gateway; by the time
// a request reaches this service the shop id and actor are trusted values.
func ShopContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if shopId := c.GetHeader("X-Shop-Id"); shopId != "" {
			ctx = utils.SetShopIdInContext(ctx, shopId)
		}

		userName := c.GetHeader("X-User-Name")
		if userName == "" {
			userName = "System"
		}
		ctx = utils.SetUserNameInContext(ctx, userName)

		correlationId := c.GetHeader("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Header("X-Correlation-Id", correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestContext returns the plumbed context for handlers.
func RequestContext(c *gin.Context) context.Context {
	return c.Request.Context()
}
