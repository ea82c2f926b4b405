package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curlben/msuas-server/internal/common"
)

// Recovery converts panics into a uniform 500 envelope instead of a
// dropped connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic recovered: %v", rec)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
