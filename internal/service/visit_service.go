package service

import (
	"context"
	"strings"
	"time"

	"github.com/offeroye/internal/models"
	"github.com/offeroye/internal/repository"
)

const (
	maxVisitFieldLength     = 128
	maxVisitUserAgentLength = 512
)

// VisitInput 点击记录输入
type VisitInput struct {
	CouponID  string
	Source    string
	City      string
	ClientIP  string
	UserAgent string
	RequestID string
}

// VisitService 点击记录服务
type VisitService struct {
	repo repository.VisitRepository
	now  func() time.Time
}

// NewVisitService 创建点击记录服务
func NewVisitService(repo repository.VisitRepository) *VisitService {
	return &VisitService{repo: repo, now: time.Now}
}

// Record 追加点击记录
func (s *VisitService) Record(ctx context.Context, input VisitInput) (*models.CouponVisit, error) {
	couponID := truncate(strings.TrimSpace(input.CouponID), maxVisitFieldLength)
	if couponID == "" {
		return nil, ErrVisitInvalid
	}
	visit := &models.CouponVisit{
		CouponID:  couponID,
		Source:    truncate(strings.TrimSpace(input.Source), maxVisitFieldLength),
		City:      models.NormalizeCity(truncate(strings.TrimSpace(input.City), 64)),
		ClientIP:  truncate(strings.TrimSpace(input.ClientIP), 64),
		UserAgent: truncate(strings.TrimSpace(input.UserAgent), maxVisitUserAgentLength),
		RequestID: truncate(strings.TrimSpace(input.RequestID), 64),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, visit); err != nil {
		return nil, err
	}
	return visit, nil
}

// SourceCounts 统计 since 之后各来源的点击数
func (s *VisitService) SourceCounts(ctx context.Context, since time.Time) ([]repository.SourceVisitCount, error) {
	return s.repo.CountBySource(ctx, since)
}

// List 分页查询点击记录
func (s *VisitService) List(ctx context.Context, filter repository.VisitListFilter) ([]models.CouponVisit, int64, error) {
	return s.repo.List(ctx, filter)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
