package repository

import (
	"context"
	"strings"
	"time"

	"github.com/offeroye/internal/models"

	"gorm.io/gorm"
)

// VisitRepository 优惠点击记录数据访问接口
type VisitRepository interface {
	Create(ctx context.Context, visit *models.CouponVisit) error
	List(ctx context.Context, filter VisitListFilter) ([]models.CouponVisit, int64, error)
	CountBySource(ctx context.Context, since time.Time) ([]SourceVisitCount, error)
}

// GormVisitRepository GORM 实现
type GormVisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository 创建点击记录仓库
func NewVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

// Create 追加点击记录
func (r *GormVisitRepository) Create(ctx context.Context, visit *models.CouponVisit) error {
	if visit == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(visit).Error
}

// List 分页查询点击记录
func (r *GormVisitRepository) List(ctx context.Context, filter VisitListFilter) ([]models.CouponVisit, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CouponVisit{})
	if filter.CouponID != "" {
		query = query.Where("coupon_id = ?", filter.CouponID)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"coupon_id", "source", "city"})
		query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var visits []models.CouponVisit
	if err := query.Order("id desc").Find(&visits).Error; err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

// CountBySource 统计 since 之后各来源的点击数，按点击数倒序
func (r *GormVisitRepository) CountBySource(ctx context.Context, since time.Time) ([]SourceVisitCount, error) {
	var rows []SourceVisitCount
	query := r.db.WithContext(ctx).Model(&models.CouponVisit{}).
		Select("source, COUNT(*) AS visits")
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	err := query.Group("source").
		Order("visits DESC, source ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
