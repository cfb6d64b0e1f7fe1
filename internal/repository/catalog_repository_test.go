package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/offeroye/internal/models"
)

func TestFileCatalogRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "coupons.json")
	repo := NewFileCatalogRepository(path)
	ctx := context.Background()

	catalog := models.NewCatalog([]models.Coupon{
		{Code: models.StringPtr("AMAZON500"), Description: "Flat Rs. 500 Off", Source: "Amazon", Category: "electronics", City: "all", IsHot: true},
		{Description: "No code needed", Source: "Swiggy", Category: "food", City: "Pune"},
	}, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	if err := repo.Save(ctx, catalog); err != nil {
		t.Fatalf("save catalog failed: %v", err)
	}
	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load catalog failed: %v", err)
	}
	if loaded.Count != 2 || len(loaded.Coupons) != 2 {
		t.Fatalf("unexpected count: %d", loaded.Count)
	}
	if loaded.GeneratedAt != catalog.GeneratedAt {
		t.Fatalf("generated_at mismatch: %s", loaded.GeneratedAt)
	}
	if loaded.Coupons[0].CodeValue() != "AMAZON500" || !loaded.Coupons[0].IsHot {
		t.Fatalf("first coupon mismatch: %+v", loaded.Coupons[0])
	}
	if loaded.Coupons[1].HasCode() {
		t.Fatalf("absent code should stay absent after round trip")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files should be cleaned up, found %d entries", len(entries))
	}
}

func TestFileCatalogRepositoryMissingFile(t *testing.T) {
	repo := NewFileCatalogRepository(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := repo.Load(context.Background()); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
}

func TestDecodeCatalogTolerant(t *testing.T) {
	data := []byte(`{
		"timestamp": "2026-02-01T10:00:00.123456",
		"count": 99,
		"coupons": [
			{"coupon_code": "LEGACY", "description": "Legacy record", "product_url": "https://legacy.example", "source": "Ajio"},
			{"code": null, "description": "Null code", "min_order": 500, "is_featured": "true", "city": ""},
			"not-an-object",
			{}
		]
	}`)
	catalog, err := DecodeCatalog(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if catalog.Count != 3 {
		t.Fatalf("count should reflect decoded records, got %d", catalog.Count)
	}
	legacy := catalog.Coupons[0]
	if legacy.CodeValue() != "LEGACY" || legacy.URL != "https://legacy.example" {
		t.Fatalf("legacy keys not honoured: %+v", legacy)
	}
	if legacy.City != models.CityAll {
		t.Fatalf("missing city should default to all, got %q", legacy.City)
	}
	second := catalog.Coupons[1]
	if second.HasCode() {
		t.Fatalf("null code should be absent")
	}
	if second.MinOrder != "500" || !second.IsFeatured || second.City != models.CityAll {
		t.Fatalf("loose values not coerced: %+v", second)
	}
	empty := catalog.Coupons[2]
	if empty.Description != "" || empty.Source != "" {
		t.Fatalf("empty record should decode to empty fields: %+v", empty)
	}
}

func TestDecodeCatalogMissingCoupons(t *testing.T) {
	catalog, err := DecodeCatalog([]byte(`{"timestamp":"x"}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !catalog.Empty() || catalog.Coupons == nil {
		t.Fatalf("missing coupons should decode to empty non-nil list")
	}
}

func TestDecodeCatalogMalformed(t *testing.T) {
	for name, data := range map[string]string{
		"not json":      `{`,
		"coupons type":  `{"coupons": "nope"}`,
		"top-level arr": `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeCatalog([]byte(data)); !errors.Is(err, ErrCatalogMalformed) {
				t.Fatalf("expected ErrCatalogMalformed, got %v", err)
			}
		})
	}
}

func TestCatalogAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	age, ok := CatalogAge(&models.Catalog{GeneratedAt: "2026-03-01T08:00:00Z"}, now, nil)
	if !ok || age != 4*time.Hour {
		t.Fatalf("unexpected age %v ok=%v", age, ok)
	}
	if _, ok := CatalogAge(&models.Catalog{GeneratedAt: "yesterday"}, now, nil); ok {
		t.Fatalf("unparseable timestamp should report false")
	}
}

func TestCatalogAgeNaiveTimestampUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// 13:30 IST == 08:00 UTC
	age, ok := CatalogAge(&models.Catalog{GeneratedAt: "2026-03-01T13:30:00.000000"}, now, ist)
	if !ok || age != 4*time.Hour {
		t.Fatalf("naive local timestamp should be read in location, age=%v ok=%v", age, ok)
	}

	// 带偏移的时间不受 loc 影响
	age, ok = CatalogAge(&models.Catalog{GeneratedAt: "2026-03-01T08:00:00Z"}, now, ist)
	if !ok || age != 4*time.Hour {
		t.Fatalf("explicit offset should win over location, age=%v", age)
	}

	if _, ok := ParseCatalogTime("  ", ist); ok {
		t.Fatalf("blank timestamp should not parse")
	}
}
