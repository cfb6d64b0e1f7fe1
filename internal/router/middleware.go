package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/http/response"
	"github.com/offeroye/internal/i18n"
	"github.com/offeroye/internal/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 64
)

var (
	corsDefaultMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsDefaultHeaders = []string{"Content-Type", "Accept-Language", "Cache-Control", "X-Requested-With", requestIDHeader}
)

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// CORSMiddleware 跨域中间件
// 页面与访问统计只需要 GET/POST，未配置时使用最小集合。
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := orDefault(cfg.AllowedOrigins, []string{"*"})
	methodsHeader := strings.Join(orDefault(cfg.AllowedMethods, corsDefaultMethods), ", ")
	headersHeader := strings.Join(orDefault(cfg.AllowedHeaders, corsDefaultHeaders), ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := sanitizeRequestID(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// sanitizeRequestID 客户端传入的 ID 会写入点击记录，超长或含非法字符时丢弃
func sanitizeRequestID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLength {
		return ""
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return ""
		}
	}
	return id
}

// filteredRoutes 记录筛选条件的优惠查询路由
var filteredRoutes = map[string]struct{}{
	"/":                      {},
	"/api/v1/public/coupons": {},
}

// LoggerMiddleware 结构化请求日志中间件
// 优惠查询路由额外记录筛选条件与命中的城市。
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		fields = append(fields, filterLogFields(c)...)
		if len(c.Errors) > 0 {
			sugar.Errorw("http_request", append(fields, "errors", c.Errors.String())...)
			return
		}
		sugar.Infow("http_request", fields...)
	}
}

// filterLogFields 优惠查询的筛选字段，非查询路由返回 nil
func filterLogFields(c *gin.Context) []interface{} {
	if _, ok := filteredRoutes[c.FullPath()]; !ok {
		return nil
	}
	q, err := query.ParseQuery(c.Request.URL.Query())
	if err != nil {
		return []interface{}{"filtered", false, "query_invalid", true}
	}
	if !q.HasFilters() {
		return []interface{}{"filtered", false}
	}
	fields := []interface{}{"filtered", true}
	for _, field := range []struct {
		key   string
		value string
	}{
		{query.ParamSource, q.Source},
		{query.ParamCategory, q.Category},
		{query.ParamCity, q.City},
		{query.ParamSearch, q.Search},
		{query.ParamProduct, q.Product},
	} {
		if field.value != "" {
			fields = append(fields, "filter_"+field.key, field.value)
		}
	}
	return fields
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// NoRouteHandler 未匹配路由返回统一 404 响应
func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.NotFound(c, i18n.T(i18n.ResolveLocale(c), "error.not_found"))
	}
}
