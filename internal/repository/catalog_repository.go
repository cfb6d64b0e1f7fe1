package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/offeroye/internal/models"

	"github.com/spf13/cast"
)

var (
	// ErrCatalogNotFound 目录文件不存在
	ErrCatalogNotFound = errors.New("catalog file not found")
	// ErrCatalogMalformed 目录文件无法解析
	ErrCatalogMalformed = errors.New("catalog file malformed")
)

// CatalogRepository 优惠目录持久化接口
type CatalogRepository interface {
	Load(ctx context.Context) (*models.Catalog, error)
	Save(ctx context.Context, catalog *models.Catalog) error
	Path() string
}

// FileCatalogRepository JSON 文件实现
type FileCatalogRepository struct {
	path string
}

// NewFileCatalogRepository 创建目录文件仓库
func NewFileCatalogRepository(path string) *FileCatalogRepository {
	return &FileCatalogRepository{path: strings.TrimSpace(path)}
}

// Path 文件路径
func (r *FileCatalogRepository) Path() string {
	return r.path
}

// Load 读取目录文件
// 缺失字段按空值处理；coupons 缺失视为空目录；非对象的条目会被跳过。
func (r *FileCatalogRepository) Load(ctx context.Context) (*models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, r.path)
		}
		return nil, err
	}
	return DecodeCatalog(data)
}

// Save 原子写入目录文件
func (r *FileCatalogRepository) Save(ctx context.Context, catalog *models.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if catalog == nil {
		return errors.New("catalog is nil")
	}
	payload := models.Catalog{
		GeneratedAt: catalog.GeneratedAt,
		Count:       len(catalog.Coupons),
		Coupons:     catalog.Coupons,
	}
	if payload.Coupons == nil {
		payload.Coupons = []models.Coupon{}
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir failed: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".coupons-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog failed: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp catalog failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp catalog failed: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace catalog failed: %w", err)
	}
	return nil
}

// DecodeCatalog 宽松解析目录 JSON
func DecodeCatalog(data []byte) (*models.Catalog, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogMalformed, err)
	}

	catalog := &models.Catalog{
		GeneratedAt: cast.ToString(doc["timestamp"]),
		Coupons:     []models.Coupon{},
	}
	rawCoupons, ok := doc["coupons"]
	if !ok || rawCoupons == nil {
		return catalog, nil
	}
	entries, ok := rawCoupons.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: coupons is %T", ErrCatalogMalformed, rawCoupons)
	}
	for _, entry := range entries {
		record, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		catalog.Coupons = append(catalog.Coupons, decodeCoupon(record))
	}
	catalog.Count = len(catalog.Coupons)
	return catalog, nil
}

func decodeCoupon(record map[string]interface{}) models.Coupon {
	return models.Coupon{
		Code:        optionalString(record, "code", "coupon_code"),
		Description: stringField(record, "description"),
		Discount:    stringField(record, "discount"),
		MinOrder:    stringField(record, "min_order"),
		Expires:     stringField(record, "expires"),
		URL:         stringField(record, "url", "product_url"),
		Source:      stringField(record, "source"),
		Category:    stringField(record, "category"),
		City:        models.NormalizeCity(stringField(record, "city")),
		Timestamp:   stringField(record, "timestamp"),
		IsHot:       cast.ToBool(record["is_hot"]),
		IsFeatured:  cast.ToBool(record["is_featured"]),
	}
}

// stringField 按顺序读取第一个存在的字段
func stringField(record map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := record[key]; ok && value != nil {
			return cast.ToString(value)
		}
	}
	return ""
}

func optionalString(record map[string]interface{}, keys ...string) *string {
	for _, key := range keys {
		if value, ok := record[key]; ok && value != nil {
			text := cast.ToString(value)
			return &text
		}
	}
	return nil
}

// ParseCatalogTime 解析目录时间戳
// 不带时区的时间按 loc 解释，loc 为空时使用 UTC。
func ParseCatalogTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// CatalogAge 返回目录生成时间距 now 的时长，无法解析时返回 false
func CatalogAge(catalog *models.Catalog, now time.Time, loc *time.Location) (time.Duration, bool) {
	if catalog == nil {
		return 0, false
	}
	generated, ok := ParseCatalogTime(catalog.GeneratedAt, loc)
	if !ok {
		return 0, false
	}
	return now.Sub(generated), true
}
