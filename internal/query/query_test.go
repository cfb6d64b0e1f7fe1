package query

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

func timeFixture() time.Time {
	return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
}

func TestParseQuery(t *testing.T) {
	values := url.Values{
		"source":   {" Amazon "},
		"category": {"electronics"},
		"city":     {""},
		"search":   {"500"},
		"product":  {"tv"},
	}
	q, err := ParseQuery(values)
	if err != nil {
		t.Fatalf("parse query failed: %v", err)
	}
	want := Query{Source: "Amazon", Category: "electronics", Search: "500", Product: "tv"}
	if q != want {
		t.Fatalf("query want %+v got %+v", want, q)
	}
}

func TestParseQueryProductAlias(t *testing.T) {
	q, err := ParseQuery(url.Values{"product_search": {"fridge"}})
	if err != nil {
		t.Fatalf("parse query failed: %v", err)
	}
	if q.Product != "fridge" {
		t.Fatalf("product_search should map to product, got %q", q.Product)
	}

	q, err = ParseQuery(url.Values{"product": {"tv"}, "product_search": {"tv"}})
	if err != nil || q.Product != "tv" {
		t.Fatalf("matching aliases should be accepted: %+v %v", q, err)
	}

	if _, err := ParseQuery(url.Values{"product": {"tv"}, "product_search": {"fridge"}}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("conflicting aliases should fail, got %v", err)
	}
}

func TestParseQueryRejectsRepeatedParams(t *testing.T) {
	for _, key := range []string{ParamSource, ParamCategory, ParamCity, ParamSearch, ParamProduct, ParamProductSearch} {
		t.Run(key, func(t *testing.T) {
			_, err := ParseQuery(url.Values{key: {"a", "b"}})
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery for %s, got %v", key, err)
			}
		})
	}
}

func TestParseQueryIgnoresUnknownParams(t *testing.T) {
	q, err := ParseQuery(url.Values{"page": {"1", "2"}, "utm_source": {"x"}})
	if err != nil {
		t.Fatalf("unknown params should be ignored: %v", err)
	}
	if q.HasFilters() {
		t.Fatalf("unknown params should not produce filters")
	}
}

func TestHasFilters(t *testing.T) {
	cases := []struct {
		query Query
		want  bool
	}{
		{Query{}, false},
		{Query{Category: "all", City: "all"}, false},
		{Query{Category: "food"}, true},
		{Query{City: "Pune"}, true},
		{Query{Source: "Amazon"}, true},
		{Query{Search: "x"}, true},
		{Query{Product: "tv"}, true},
	}
	for _, tc := range cases {
		if got := tc.query.HasFilters(); got != tc.want {
			t.Fatalf("HasFilters(%+v) want %v got %v", tc.query, tc.want, got)
		}
	}
}

func TestQueryKeyDistinguishesFields(t *testing.T) {
	a := Query{Source: "tv"}.Key()
	b := Query{Product: "tv"}.Key()
	if a == b {
		t.Fatalf("keys for different fields should differ: %s", a)
	}
	if a != (Query{Source: "tv"}).Key() {
		t.Fatalf("key should be stable")
	}
}

func TestExpandKeyword(t *testing.T) {
	tv := ExpandKeyword("TV")
	for _, want := range []string{"tv", "television", "smart tv", "led", "lcd"} {
		if !containsTerm(tv, want) {
			t.Fatalf("tv expansion missing %q: %v", want, tv)
		}
	}

	fridge := ExpandKeyword("fridge")
	if !containsTerm(fridge, "refrigerator") {
		t.Fatalf("fridge should expand to refrigerator: %v", fridge)
	}

	// 查询词包含表中的键
	smartTV := ExpandKeyword("smart tv 55 inch")
	if !containsTerm(smartTV, "television") || !containsTerm(smartTV, "smart tv 55 inch") {
		t.Fatalf("term containing key should expand: %v", smartTV)
	}

	// 表中的键包含查询词
	wash := ExpandKeyword("washing")
	if !containsTerm(wash, "washer") || !containsTerm(wash, "washing machine") {
		t.Fatalf("key containing term should expand: %v", wash)
	}

	unknown := ExpandKeyword("zzzz")
	if len(unknown) != 1 || unknown[0] != "zzzz" {
		t.Fatalf("unknown term should expand to itself: %v", unknown)
	}

	if got := ExpandKeyword("   "); got != nil {
		t.Fatalf("blank term should expand to nil: %v", got)
	}

	for i := 1; i < len(tv); i++ {
		if tv[i-1] >= tv[i] {
			t.Fatalf("expansion should be sorted and unique: %v", tv)
		}
	}
}

func containsTerm(terms []string, want string) bool {
	for _, t := range terms {
		if t == want {
			return true
		}
	}
	return false
}
