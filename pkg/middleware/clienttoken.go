package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientTokenKey gin context key for the client token
const ClientTokenKey = "client_token"

// clientTokenCookie 客户端令牌 cookie，购物车与心愿单按它隔离
const clientTokenCookie = "storefront_client"

// ClientTokenMiddleware 确保每个客户端携带稳定的匿名令牌
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(clientTokenCookie)
		if err != nil || token == "" {
			token = uuid.New().String()
			c.SetCookie(clientTokenCookie, token, 365*24*3600, "/", "", false, true)
		}
		c.Set(ClientTokenKey, token)
		c.Next()
	}
}

// ClientToken 读取当前请求的客户端令牌
func ClientToken(c *gin.Context) string {
	if v, ok := c.Get(ClientTokenKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
