package models

import (
	"strings"
	"time"
)

// CityAll 全国通用优惠的城市标记
const CityAll = "all"

// CategoryAll 通用分类标记
const CategoryAll = "all"

// Coupon 优惠券记录
// 说明：所有字符串字段均原样保存，不做日期或金额解析。
type Coupon struct {
	Code        *string `json:"code,omitempty"`        // 优惠码（nil 表示无需优惠码）
	Description string  `json:"description"`           // 优惠描述
	Discount    string  `json:"discount"`              // 折扣文案
	MinOrder    string  `json:"min_order,omitempty"`   // 最低消费文案
	Expires     string  `json:"expires"`               // 过期时间文案
	URL         string  `json:"url"`                   // 跳转链接
	Source      string  `json:"source"`                // 商家/来源
	Category    string  `json:"category"`              // 分类（all 表示通用）
	City        string  `json:"city"`                  // 城市（all 表示全国）
	Timestamp   string  `json:"timestamp"`             // 生成时间（ISO-8601）
	IsHot       bool    `json:"is_hot,omitempty"`      // 热门
	IsFeatured  bool    `json:"is_featured,omitempty"` // 精选
}

// CodeValue 返回优惠码，无码时返回空字符串
func (c Coupon) CodeValue() string {
	if c.Code == nil {
		return ""
	}
	return *c.Code
}

// HasCode 是否需要优惠码
func (c Coupon) HasCode() bool {
	return c.Code != nil
}

// IsLocal 是否为城市本地优惠
func (c Coupon) IsLocal() bool {
	return c.City != "" && c.City != CityAll
}

// StringPtr 返回字符串指针
func StringPtr(value string) *string {
	return &value
}

// Catalog 优惠目录快照
type Catalog struct {
	GeneratedAt string   `json:"timestamp"` // 生成时间
	Count       int      `json:"count"`     // 优惠数量
	Coupons     []Coupon `json:"coupons"`   // 优惠列表

	Generation string    `json:"-"` // 快照版本号（仅内存）
	LoadedAt   time.Time `json:"-"` // 载入内存时间
}

// NewCatalog 基于优惠列表创建目录
func NewCatalog(coupons []Coupon, generatedAt time.Time) *Catalog {
	if coupons == nil {
		coupons = []Coupon{}
	}
	return &Catalog{
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Count:       len(coupons),
		Coupons:     coupons,
	}
}

// Empty 是否为空目录
func (c *Catalog) Empty() bool {
	return c == nil || len(c.Coupons) == 0
}

// Len 优惠数量
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Coupons)
}

// NormalizeCity 归一化城市字段，空值视为全国
func NormalizeCity(city string) string {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return CityAll
	}
	return trimmed
}
