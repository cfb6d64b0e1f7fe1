package query

import (
	"fmt"
	"testing"

	"github.com/offeroye/internal/models"
)

func coupon(code, source, category, city, description string) models.Coupon {
	return models.Coupon{
		Code:        models.StringPtr(code),
		Description: description,
		Source:      source,
		Category:    category,
		City:        city,
	}
}

func sampleCoupons() []models.Coupon {
	return []models.Coupon{
		coupon("AMZ1", "Amazon", "electronics", models.CityAll, "Flat Rs. 500 Off on Electronics"),
		coupon("FK1", "Flipkart", "all", models.CityAll, "Rs. 200 Off on Rs. 1000"),
		coupon("RD1", "Reliance Digital", "electronics", models.CityAll, "25% Off on TV & Appliances"),
		coupon("MUM50", "Leopold Cafe", "food", "Mumbai", "50% Off at Leopold Cafe"),
		coupon("DEL50", "Moti Mahal", "food", "Delhi", "50% Off at Moti Mahal"),
		{Description: "Flat 20% off Refrigerator", Source: "Croma", Category: "electronics", City: models.CityAll},
	}
}

func codes(coupons []models.Coupon) []string {
	result := make([]string, 0, len(coupons))
	for _, c := range coupons {
		result = append(result, c.CodeValue())
	}
	return result
}

func noShuffle([]models.Coupon) {}

func TestFilterBySourceOnly(t *testing.T) {
	all := sampleCoupons()
	got := Filter(all, Query{Source: "Amazon"})
	if len(got) != 1 || got[0].CodeValue() != "AMZ1" {
		t.Fatalf("unexpected result: %v", codes(got))
	}
	if got := Filter(all, Query{Source: "amazon"}); len(got) != 0 {
		t.Fatalf("source match should be case-sensitive, got %v", codes(got))
	}
	if got := Filter(all, Query{Source: "Unknown Store"}); len(got) != 0 {
		t.Fatalf("unknown source should yield empty result, got %v", codes(got))
	}
}

func TestFilterCityJoinRule(t *testing.T) {
	all := sampleCoupons()

	mumbai := Filter(all, Query{City: "Mumbai"})
	hasMumbai, hasNationwide, hasDelhi := false, false, false
	for _, c := range mumbai {
		switch c.City {
		case "Mumbai":
			hasMumbai = true
		case models.CityAll:
			hasNationwide = true
		case "Delhi":
			hasDelhi = true
		}
	}
	if !hasMumbai || !hasNationwide || hasDelhi {
		t.Fatalf("mumbai query should return mumbai and nationwide only: %v", codes(mumbai))
	}

	delhi := Filter(all, Query{City: "Delhi"})
	for _, c := range delhi {
		if c.City == "Mumbai" {
			t.Fatalf("delhi query must exclude mumbai coupons: %v", codes(delhi))
		}
	}

	if got := Filter(all, Query{City: "all"}); len(got) != len(all) {
		t.Fatalf("city=all should pass through, got %d of %d", len(got), len(all))
	}
}

func TestFilterCategoryPassThrough(t *testing.T) {
	all := sampleCoupons()
	if got := Filter(all, Query{Category: "all"}); len(got) != len(all) {
		t.Fatalf("category=all should pass through, got %d", len(got))
	}
	if got := Filter(all, Query{}); len(got) != len(all) {
		t.Fatalf("empty query should match all, got %d", len(got))
	}
	got := Filter(all, Query{Category: "food"})
	if len(got) != 2 {
		t.Fatalf("expected 2 food coupons, got %v", codes(got))
	}
}

func TestFilterSearchMatchesDescriptionOrCode(t *testing.T) {
	all := sampleCoupons()
	got := Filter(all, Query{Search: "leopold"})
	if len(got) != 1 || got[0].CodeValue() != "MUM50" {
		t.Fatalf("description search failed: %v", codes(got))
	}
	got = Filter(all, Query{Search: "fk1"})
	if len(got) != 1 || got[0].CodeValue() != "FK1" {
		t.Fatalf("code search failed: %v", codes(got))
	}
	got = Filter(all, Query{Search: "croma"})
	if len(got) != 0 {
		t.Fatalf("search should not look at source: %v", codes(got))
	}
}

func TestFilterConjunctive(t *testing.T) {
	all := sampleCoupons()
	got := Filter(all, Query{City: "Mumbai", Category: "food", Search: "50%"})
	if len(got) != 1 || got[0].CodeValue() != "MUM50" {
		t.Fatalf("conjunctive filter failed: %v", codes(got))
	}
}

func TestFilterProductKeywordExpandsSynonyms(t *testing.T) {
	all := sampleCoupons()
	got := Filter(all, Query{Product: "fridge"})
	found := false
	for _, c := range got {
		if c.Description == "Flat 20% off Refrigerator" {
			found = true
		}
	}
	if !found {
		t.Fatalf("fridge should match refrigerator description")
	}

	got = Filter(all, Query{Product: "tv"})
	if len(got) != 1 || got[0].CodeValue() != "RD1" {
		t.Fatalf("tv should match RD1 only: %v", codes(got))
	}

	got = Filter(all, Query{Product: "Moti"})
	if len(got) != 1 || got[0].CodeValue() != "DEL50" {
		t.Fatalf("product keyword should look at source: %v", codes(got))
	}
}

func TestProductKeywordIsSupersetOfSearch(t *testing.T) {
	all := sampleCoupons()
	for _, term := range []string{"tv", "fridge", "off", "50", "amz1", "food"} {
		search := Filter(all, Query{Search: term})
		product := Filter(all, Query{Product: term})
		index := make(map[string]bool, len(product))
		for _, c := range product {
			index[c.Description] = true
		}
		for _, c := range search {
			if !index[c.Description] {
				t.Fatalf("term %q: product result misses %q", term, c.Description)
			}
		}
	}
}

func TestRunCapsResultsAndReportsTotal(t *testing.T) {
	coupons := make([]models.Coupon, 0, 73)
	for i := 0; i < 73; i++ {
		coupons = append(coupons, coupon(fmt.Sprintf("C%02d", i), "Amazon", "electronics", models.CityAll, "deal"))
	}
	catalog := models.NewCatalog(coupons, timeFixture())

	result := NewEngineWithShuffle(noShuffle).Run(catalog, Query{Source: "Amazon"})
	if len(result.Coupons) != ResultLimit {
		t.Fatalf("expected %d coupons, got %d", ResultLimit, len(result.Coupons))
	}
	if result.Total != 73 {
		t.Fatalf("expected total 73, got %d", result.Total)
	}
	if result.Coupons[0].CodeValue() != "C00" || result.Coupons[49].CodeValue() != "C49" {
		t.Fatalf("result should keep catalog order")
	}
}

func TestSpotlightHotFeaturedExclusive(t *testing.T) {
	coupons := sampleCoupons()
	coupons[0].IsHot = true
	coupons[0].IsFeatured = true
	coupons[2].IsFeatured = true
	coupons[3].IsHot = true

	spot := NewEngineWithShuffle(noShuffle).Spotlight(coupons)
	if len(spot) > SpotlightSize {
		t.Fatalf("spotlight too long: %d", len(spot))
	}
	seen := make(map[string]int)
	for _, c := range spot {
		seen[c.Description]++
	}
	for desc, n := range seen {
		if n > 1 {
			t.Fatalf("coupon %q appears %d times", desc, n)
		}
	}
	got := codes(spot)
	want := []string{"AMZ1", "MUM50", "RD1", "FK1", "DEL50", ""}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("spotlight want %v got %v", want, got)
	}
}

func TestSpotlightBackfillLimit(t *testing.T) {
	coupons := make([]models.Coupon, 0, 20)
	for i := 0; i < 20; i++ {
		coupons = append(coupons, coupon(fmt.Sprintf("C%02d", i), "S", "x", models.CityAll, "d"))
	}
	coupons[15].IsHot = true

	spot := NewEngineWithShuffle(noShuffle).Spotlight(coupons)
	if len(spot) != SpotlightSize {
		t.Fatalf("expected %d, got %d", SpotlightSize, len(spot))
	}
	if spot[0].CodeValue() != "C15" || spot[1].CodeValue() != "C00" {
		t.Fatalf("hot first then catalog order expected, got %v", codes(spot))
	}

	few := NewEngineWithShuffle(noShuffle).Spotlight(coupons[:3])
	if len(few) != 3 {
		t.Fatalf("small catalog spotlight should contain all entries, got %d", len(few))
	}
	if got := NewEngine().Spotlight(nil); len(got) != 0 {
		t.Fatalf("empty catalog spotlight should be empty")
	}
}

func TestSpotlightShuffleAppliesToCandidatesOnly(t *testing.T) {
	coupons := make([]models.Coupon, 0, 10)
	for i := 0; i < 10; i++ {
		c := coupon(fmt.Sprintf("C%d", i), "S", "x", models.CityAll, "d")
		c.IsFeatured = i < 8
		coupons = append(coupons, c)
	}
	reverse := func(list []models.Coupon) {
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	spot := NewEngineWithShuffle(reverse).Spotlight(coupons)
	want := []string{"C7", "C6", "C5", "C4", "C3", "C2"}
	if fmt.Sprint(codes(spot)) != fmt.Sprint(want) {
		t.Fatalf("spotlight want %v got %v", want, codes(spot))
	}
}

func TestRunSpotlightSuppression(t *testing.T) {
	coupons := sampleCoupons()
	coupons[1].IsHot = true
	catalog := models.NewCatalog(coupons, timeFixture())
	engine := NewEngineWithShuffle(noShuffle)

	cases := []struct {
		name  string
		query Query
		empty bool
	}{
		{name: "no filters", query: Query{}, empty: false},
		{name: "category all", query: Query{Category: "all"}, empty: false},
		{name: "city all", query: Query{City: "all"}, empty: false},
		{name: "source", query: Query{Source: "Amazon"}, empty: true},
		{name: "category", query: Query{Category: "food"}, empty: true},
		{name: "city", query: Query{City: "Mumbai"}, empty: true},
		{name: "search", query: Query{Search: "x"}, empty: true},
		{name: "product", query: Query{Product: "tv"}, empty: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := engine.Run(catalog, tc.query)
			if tc.empty && len(result.Spotlight) != 0 {
				t.Fatalf("spotlight should be empty, got %v", codes(result.Spotlight))
			}
			if !tc.empty && len(result.Spotlight) == 0 {
				t.Fatalf("spotlight should be present")
			}
			if result.Spotlight == nil {
				t.Fatalf("spotlight should never be nil")
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	stats := Aggregate(sampleCoupons())
	if stats.SourceCount != 6 || len(stats.Sources) != 6 {
		t.Fatalf("expected 6 sources, got %v", stats.Sources)
	}
	if fmt.Sprint(stats.Cities) != "[Delhi Mumbai]" {
		t.Fatalf("unexpected cities: %v", stats.Cities)
	}
	if _, ok := stats.Categories["all"]; ok {
		t.Fatalf("category all must be excluded")
	}
	if stats.Categories["electronics"] != 3 || stats.Categories["food"] != 2 {
		t.Fatalf("unexpected categories: %v", stats.Categories)
	}

	empty := Aggregate(nil)
	if empty.SourceCount != 0 || len(empty.Cities) != 0 || len(empty.Categories) != 0 || empty.Total != 0 {
		t.Fatalf("empty catalog should aggregate to zero: %+v", empty)
	}
}

func TestRunEmptyCatalog(t *testing.T) {
	result := NewEngine().Run(nil, Query{Source: "Amazon"})
	if len(result.Coupons) != 0 || result.Total != 0 {
		t.Fatalf("nil catalog should produce empty result")
	}
	result = NewEngine().Run(models.NewCatalog(nil, timeFixture()), Query{})
	if len(result.Spotlight) != 0 || result.Stats.SourceCount != 0 {
		t.Fatalf("empty catalog should produce empty spotlight and stats")
	}
}
