package public

import (
	"github.com/offeroye/internal/http/response"
	"github.com/offeroye/internal/query"

	"github.com/gin-gonic/gin"
)

// ListCoupons 按条件查询优惠
func (h *Handler) ListCoupons(c *gin.Context) {
	q, err := query.ParseQuery(c.Request.URL.Query())
	if err != nil {
		respondCouponQueryError(c, err)
		return
	}
	result, err := h.CouponService.List(c.Request.Context(), q)
	if err != nil {
		respondCouponQueryError(c, err)
		return
	}
	response.Success(c, result)
}

// GetStats 获取全量目录统计
func (h *Handler) GetStats(c *gin.Context) {
	response.Success(c, h.CouponService.Stats(c.Request.Context()))
}
