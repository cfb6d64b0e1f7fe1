package public

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/offeroye/internal/http/handlers/shared"
	"github.com/offeroye/internal/http/response"
	"github.com/offeroye/internal/repository"
	"github.com/offeroye/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultVisitStatsHours = 24
	maxVisitStatsHours     = 24 * 30
)

// VisitRequest 点击记录请求
type VisitRequest struct {
	CouponID string `json:"coupon_id" binding:"required"`
	Source   string `json:"source"`
	City     string `json:"city"`
}

// RecordVisit 记录一次“使用优惠”点击
func (h *Handler) RecordVisit(c *gin.Context) {
	if h.VisitService == nil {
		respondError(c, response.CodeNotFound, "error.visit_tracking_disabled", nil)
		return
	}
	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.visit_invalid", nil)
		return
	}
	input := service.VisitInput{
		CouponID:  req.CouponID,
		Source:    req.Source,
		City:      req.City,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: c.GetString("request_id"),
	}
	h.fillVisitFromCatalog(c, &input)
	visit, err := h.VisitService.Record(c.Request.Context(), input)
	if err != nil {
		respondVisitError(c, err)
		return
	}
	response.Success(c, visit)
}

// fillVisitFromCatalog 请求未带来源或城市时从当前目录补全
func (h *Handler) fillVisitFromCatalog(c *gin.Context, input *service.VisitInput) {
	if h.CouponService == nil {
		return
	}
	if strings.TrimSpace(input.Source) != "" && strings.TrimSpace(input.City) != "" {
		return
	}
	coupon, ok := h.CouponService.Lookup(c.Request.Context(), strings.TrimSpace(input.CouponID))
	if !ok {
		return
	}
	if strings.TrimSpace(input.Source) == "" {
		input.Source = coupon.Source
	}
	if strings.TrimSpace(input.City) == "" {
		input.City = coupon.City
	}
}

// GetVisitStats 按来源统计最近点击
func (h *Handler) GetVisitStats(c *gin.Context) {
	if h.VisitService == nil {
		respondError(c, response.CodeNotFound, "error.visit_tracking_disabled", nil)
		return
	}
	hours, err := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(defaultVisitStatsHours)))
	if err != nil || hours <= 0 {
		hours = defaultVisitStatsHours
	}
	if hours > maxVisitStatsHours {
		hours = maxVisitStatsHours
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	counts, err := h.VisitService.SourceCounts(c.Request.Context(), since)
	if err != nil {
		respondError(c, response.CodeInternal, "error.visit_stats_failed", err)
		return
	}
	if counts == nil {
		counts = []repository.SourceVisitCount{}
	}
	response.Success(c, gin.H{
		"hours":   hours,
		"since":   since,
		"sources": counts,
	})
}

// ListVisits 分页查询点击记录
func (h *Handler) ListVisits(c *gin.Context) {
	if h.VisitService == nil {
		respondError(c, response.CodeNotFound, "error.visit_tracking_disabled", nil)
		return
	}
	page, pageSize := handlershared.ParsePagination(c)

	visits, total, err := h.VisitService.List(c.Request.Context(), repository.VisitListFilter{
		Page:     page,
		PageSize: pageSize,
		CouponID: c.Query("coupon_id"),
		Source:   c.Query("source"),
		Keyword:  c.Query("keyword"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.visit_stats_failed", err)
		return
	}
	response.SuccessWithPage(c, visits, response.NewPagination(page, pageSize, total))
}
