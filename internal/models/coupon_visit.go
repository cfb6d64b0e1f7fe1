package models

import "time"

// CouponVisit 优惠点击记录
// 说明：用户点击"使用优惠"时追加一条记录，仅追加不修改。
type CouponVisit struct {
	ID        uint      `gorm:"primarykey" json:"id"`                     // 主键
	CouponID  string    `gorm:"type:varchar(128);index" json:"coupon_id"` // 优惠标识（优惠码或描述）
	Source    string    `gorm:"type:varchar(128);index" json:"source"`    // 商家/来源
	City      string    `gorm:"type:varchar(64)" json:"city"`             // 城市
	ClientIP  string    `gorm:"type:varchar(64);index" json:"client_ip"`  // 客户端IP
	UserAgent string    `gorm:"type:text" json:"user_agent"`              // 客户端UA
	RequestID string    `gorm:"type:varchar(64);index" json:"request_id"` // 请求追踪ID
	CreatedAt time.Time `gorm:"index" json:"timestamp"`                   // 点击时间
}

// TableName 指定表名
func (CouponVisit) TableName() string {
	return "coupon_visits"
}
