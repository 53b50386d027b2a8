package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/autoshop-quotes/internal/app"
)

// RequestMemo scopes catalog lookups to the request, so a handler that
// lists quotes and then opens the editor asks the catalog once per key.
func RequestMemo() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(app.WithRequestMemo(c.Request.Context()))
		c.Next()
	}
}
