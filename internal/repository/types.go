package repository

import "time"

// VisitListFilter 查询点击记录的过滤条件
type VisitListFilter struct {
	Page        int
	PageSize    int
	CouponID    string
	Source      string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// SourceVisitCount 按来源统计的点击数
type SourceVisitCount struct {
	Source string `json:"source"`
	Visits int64  `json:"visits"`
}
