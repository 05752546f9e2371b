package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// LocaleKey gin context key for the resolved locale
const LocaleKey = "locale"

// LocaleConfig 语言解析配置
type LocaleConfig struct {
	// 默认语言，路径无前缀
	Default string
	// 支持的语言列表（含默认语言）
	Supported []string
	// 持久化语言选择的 cookie 名称
	CookieName string
}

// LocaleMiddleware 解析请求语言：路径前缀 > cookie > 默认语言，并把选择写回 cookie。
// 根路径上若 cookie 指向非默认语言，重定向到带前缀的路径。
func LocaleMiddleware(cfg LocaleConfig) gin.HandlerFunc {
	supported := make(map[string]bool, len(cfg.Supported))
	for _, l := range cfg.Supported {
		supported[l] = true
	}

	return func(c *gin.Context) {
		locale := cfg.Default

		// 路径前缀优先
		if prefix := pathLocale(c.Request.URL.Path); prefix != "" && supported[prefix] {
			locale = prefix
		} else if cookie, err := c.Cookie(cfg.CookieName); err == nil && supported[cookie] {
			locale = cookie

			// cookie 指向非默认语言时，根路径强制跳转到带前缀路径
			if c.Request.URL.Path == "/" && locale != cfg.Default {
				c.Redirect(http.StatusTemporaryRedirect, "/"+locale+"/")
				c.Abort()
				return
			}
		}

		c.SetCookie(cfg.CookieName, locale, 365*24*3600, "/", "", false, false)
		c.Set(LocaleKey, locale)
		c.Next()
	}
}

// LocaleFrom 读取当前请求解析出的语言
func LocaleFrom(c *gin.Context) string {
	if v, ok := c.Get(LocaleKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// pathLocale 提取路径的第一段作为候选语言前缀
func pathLocale(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	return trimmed
}
