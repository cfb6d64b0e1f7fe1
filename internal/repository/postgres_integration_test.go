//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/offeroye/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	_ = db.Migrator().DropTable(&models.CouponVisit{})
	if err := db.AutoMigrate(&models.CouponVisit{}); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(&models.CouponVisit{})
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresVisitRepository(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewVisitRepository(db)
	ctx := context.Background()
	now := time.Now()

	rows := []models.CouponVisit{
		{CouponID: "AMAZON500", Source: "Amazon", City: "all", CreatedAt: now.Add(-time.Hour)},
		{CouponID: "PRIME", Source: "Amazon", City: "all", CreatedAt: now.Add(-2 * time.Hour)},
		{CouponID: "PUNE20", Source: "Vaishali (Pune)", City: "Pune", CreatedAt: now.Add(-10 * time.Minute)},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("create visit failed: %v", err)
		}
	}

	visits, total, err := repo.List(ctx, VisitListFilter{Keyword: "PUNE", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list visits failed: %v", err)
	}
	if total != 1 || len(visits) != 1 || visits[0].CouponID != "PUNE20" {
		t.Fatalf("ilike keyword search failed: total=%d visits=%+v", total, visits)
	}

	counts, err := repo.CountBySource(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("count by source failed: %v", err)
	}
	if len(counts) != 2 || counts[0].Source != "Amazon" || counts[0].Visits != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
