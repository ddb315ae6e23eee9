package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultMaxBodyBytes = 1 << 20

// MaxBodyBytes caps the request body size. Reads past the limit surface as
// bind errors in the handler, which report as a 400 on the malformed body.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = defaultMaxBodyBytes
	}

	return func(ctx *gin.Context) {
		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		}

		ctx.Next()
	}
}
