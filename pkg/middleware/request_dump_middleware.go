package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"servewise-backend/utilities"
)

// maxDumpBody caps how much of a request body is logged.
const maxDumpBody = 4 << 10

func RequestDumpMiddleware(log *utilities.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		body := bodyBytes
		if len(body) > maxDumpBody {
			body = body[:maxDumpBody]
		}
		start := time.Now()
		c.Next()

		log.Debug("request",
			"method", c.Request.Method,
			"url", c.Request.URL.String(),
			"params", c.Params,
			"body", string(body),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
