package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/offeroye/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupVisitRepositoryTest(t *testing.T) (*GormVisitRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CouponVisit{}); err != nil {
		t.Fatalf("migrate visit model failed: %v", err)
	}
	return NewVisitRepository(db), db
}

func TestVisitRepositoryCreateAndList(t *testing.T) {
	repo, _ := setupVisitRepositoryTest(t)
	ctx := context.Background()

	for i, source := range []string{"Amazon", "Amazon", "Zomato"} {
		visit := &models.CouponVisit{
			CouponID: fmt.Sprintf("CODE%d", i),
			Source:   source,
			ClientIP: "1.2.3.4",
		}
		if err := repo.Create(ctx, visit); err != nil {
			t.Fatalf("create visit failed: %v", err)
		}
		if visit.ID == 0 {
			t.Fatalf("visit id should be assigned")
		}
	}
	if err := repo.Create(ctx, nil); err != nil {
		t.Fatalf("nil visit should be ignored: %v", err)
	}

	visits, total, err := repo.List(ctx, VisitListFilter{Source: "Amazon", Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list visits failed: %v", err)
	}
	if total != 2 || len(visits) != 1 {
		t.Fatalf("expected total=2 len=1, got total=%d len=%d", total, len(visits))
	}
	if visits[0].CouponID != "CODE1" {
		t.Fatalf("latest visit should come first, got %s", visits[0].CouponID)
	}
}

func TestVisitRepositoryCountBySource(t *testing.T) {
	repo, db := setupVisitRepositoryTest(t)
	ctx := context.Background()
	now := time.Now()

	rows := []models.CouponVisit{
		{CouponID: "A1", Source: "Amazon", CreatedAt: now.Add(-time.Hour)},
		{CouponID: "A2", Source: "Amazon", CreatedAt: now.Add(-2 * time.Hour)},
		{CouponID: "Z1", Source: "Zomato", CreatedAt: now.Add(-30 * time.Minute)},
		{CouponID: "OLD", Source: "Myntra", CreatedAt: now.Add(-48 * time.Hour)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed visits failed: %v", err)
	}

	counts, err := repo.CountBySource(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("count by source failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 sources, got %+v", counts)
	}
	if counts[0].Source != "Amazon" || counts[0].Visits != 2 {
		t.Fatalf("unexpected first row: %+v", counts[0])
	}
	if counts[1].Source != "Zomato" || counts[1].Visits != 1 {
		t.Fatalf("unexpected second row: %+v", counts[1])
	}

	all, err := repo.CountBySource(ctx, time.Time{})
	if err != nil {
		t.Fatalf("count all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("zero since should count everything, got %+v", all)
	}
}

func TestVisitRepositoryListKeyword(t *testing.T) {
	repo, db := setupVisitRepositoryTest(t)
	ctx := context.Background()

	rows := []models.CouponVisit{
		{CouponID: "AMAZON500", Source: "Amazon", City: "all"},
		{CouponID: "PUNE20", Source: "Vaishali (Pune)", City: "Pune"},
		{CouponID: "ZOMATO", Source: "Zomato", City: "all"},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed visits failed: %v", err)
	}

	visits, total, err := repo.List(ctx, VisitListFilter{Keyword: "pune", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list visits failed: %v", err)
	}
	if total != 1 || visits[0].CouponID != "PUNE20" {
		t.Fatalf("keyword should match case-insensitively, got total=%d %+v", total, visits)
	}

	_, total, err = repo.List(ctx, VisitListFilter{Keyword: "amazon", Source: "Zomato", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list visits failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("keyword and source should combine, got total=%d", total)
	}
}
