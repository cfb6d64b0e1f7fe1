package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// LocaleEN 英文
	LocaleEN = "en"
	// LocaleZHCN 简体中文
	LocaleZHCN = "zh-CN"
	// DefaultLocale 默认语言
	DefaultLocale = LocaleEN

	localeQueryKey = "lang"
)

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":             "Invalid request parameters",
		"error.query_invalid":           "Each filter may be given only once",
		"error.not_found":               "Resource not found",
		"error.internal":                "Internal server error",
		"error.rate_limited":            "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":  "Rate limiter unavailable",
		"error.catalog_unavailable":     "No offers available right now",
		"error.catalog_refresh_failed":  "Failed to refresh offers",
		"error.refresh_rate_limited":    "Offers were refreshed recently, please retry in %d seconds",
		"error.visit_invalid":           "coupon_id is required",
		"error.visit_record_failed":     "Failed to record visit",
		"error.visit_stats_failed":      "Failed to load visit stats",
		"error.visit_tracking_disabled": "Visit tracking is disabled",
		"error.dashboard_render_failed": "Failed to render page",
		"message.refresh_inline":        "Offers refreshed",
		"message.refresh_queued":        "Refresh scheduled",
		"message.refresh_pending":       "A refresh is already scheduled",
	},
	LocaleZHCN: {
		"error.bad_request":             "请求参数错误",
		"error.query_invalid":           "每个筛选条件只能出现一次",
		"error.not_found":               "资源不存在",
		"error.internal":                "服务器内部错误",
		"error.rate_limited":            "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":  "限流服务不可用",
		"error.catalog_unavailable":     "暂无可用优惠",
		"error.catalog_refresh_failed":  "刷新优惠失败",
		"error.refresh_rate_limited":    "优惠刚刚刷新过，请 %d 秒后重试",
		"error.visit_invalid":           "coupon_id 不能为空",
		"error.visit_record_failed":     "记录点击失败",
		"error.visit_stats_failed":      "获取点击统计失败",
		"error.visit_tracking_disabled": "点击记录未启用",
		"error.dashboard_render_failed": "页面渲染失败",
		"message.refresh_inline":        "优惠已刷新",
		"message.refresh_queued":        "已加入刷新队列",
		"message.refresh_pending":       "已有待执行的刷新任务",
	},
}

// ResolveLocale 解析请求语言，优先 ?lang= 其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if locale, ok := matchLocale(c.Query(localeQueryKey)); ok {
		return locale
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale, ok := matchLocale(tag); ok {
			return locale
		}
	}
	return DefaultLocale
}

func matchLocale(tag string) (string, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case tag == "":
		return "", false
	case strings.HasPrefix(tag, "zh"):
		return LocaleZHCN, true
	case strings.HasPrefix(tag, "en"):
		return LocaleEN, true
	default:
		return "", false
	}
}

// T 翻译消息，缺失时回退默认语言，再回退为 key 本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
