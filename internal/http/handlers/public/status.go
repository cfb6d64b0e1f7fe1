package public

import (
	"strings"

	"github.com/offeroye/internal/http/response"
	"github.com/offeroye/internal/i18n"
	"github.com/offeroye/internal/service"

	"github.com/gin-gonic/gin"
)

// RefreshRequest 手动刷新请求
type RefreshRequest struct {
	Cities []string `json:"cities"`
}

// GetStatus 获取目录状态
func (h *Handler) GetStatus(c *gin.Context) {
	response.Success(c, h.CatalogService.Status())
}

// Refresh 手动刷新目录
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		req.Cities = append(req.Cities, city)
	}
	result, err := h.RefreshService.Refresh(c.Request.Context(), req.Cities)
	if err != nil {
		respondRefreshError(c, err)
		return
	}
	locale := i18n.ResolveLocale(c)
	var msg string
	switch result.Mode {
	case service.RefreshModeQueued:
		msg = i18n.T(locale, "message.refresh_queued")
	case service.RefreshModePending:
		msg = i18n.T(locale, "message.refresh_pending")
	default:
		msg = i18n.T(locale, "message.refresh_inline")
	}
	response.SuccessWithMsg(c, msg, result)
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	status := h.CatalogService.Status()
	response.Success(c, gin.H{
		"status":        "ok",
		"coupons_count": status.Count,
		"stale":         status.Stale,
	})
}
