package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/voucher_engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedPaths are never reported as API usage.
var untrackedPaths = map[string]bool{
	"/health": true,
}

// PosthogMiddleware reports every successful authenticated API call as a usage event.
// Business events (posted, approved, ...) are sent separately by the notification sink.
func PosthogMiddleware(client *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !client.IsInitialized() || untrackedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		// "/api/v1/vouchers/:voucherID/post" -> "api_usage.api_v1_vouchers_voucherID_post"
		route := strings.NewReplacer("/", "_", ":", "").Replace(strings.TrimPrefix(c.FullPath(), "/"))
		if route == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
			props["params"] = params
		}
		client.Enqueue(userID, "api_usage."+route, props)
	}
}
