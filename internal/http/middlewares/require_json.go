package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests whose Content-Type is not JSON.
// Bodyless writes (Content-Length: 0) are let through so a DELETE-style
// PUT without a payload still reaches the handler's own validation.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		switch ctx.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if ctx.Request.ContentLength == 0 {
				break
			}

			ct := strings.ToLower(ctx.GetHeader("Content-Type"))

			// media type only; parameters like charset are fine
			if !strings.HasPrefix(ct, "application/json") {
				ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": "Content-Type must be application/json",
					},
				})
				return
			}
		}

		ctx.Next()
	}
}
