package query

import (
	"sort"
	"strings"
)

// productSynonyms 商品关键词同义词表
var productSynonyms = map[string][]string{
	"tv":              {"television", "smart tv", "led", "lcd"},
	"fridge":          {"refrigerator", "double door", "single door"},
	"phone":           {"mobile", "smartphone", "iphone"},
	"mobile":          {"phone", "smartphone"},
	"laptop":          {"notebook", "macbook", "computer"},
	"ac":              {"air conditioner", "split ac", "window ac"},
	"washing machine": {"washer", "front load", "top load"},
	"headphone":       {"earphone", "earbuds", "headset", "audio"},
	"watch":           {"smartwatch", "wearable"},
	"shoe":            {"sneaker", "footwear", "sandal"},
	"dress":           {"fashion", "apparel", "clothing", "wear"},
	"makeup":          {"beauty", "cosmetic", "lipstick"},
	"skincare":        {"skin care", "beauty", "serum"},
	"furniture":       {"sofa", "bed", "table", "home decor"},
	"appliance":       {"appliances", "tv", "refrigerator", "washing machine"},
	"tablet":          {"ipad", "tab"},
	"camera":          {"dslr", "mirrorless"},
	"game":            {"gaming", "console", "playstation", "xbox"},
	"book":            {"books", "novel", "kindle"},
	"gym":             {"fitness", "workout", "exercise"},
	"biryani":         {"biryani", "dum"},
	"pizza":           {"pizza", "domino"},
	"food":            {"restaurant", "dining", "delivery", "meal"},
	"movie":           {"movie tickets", "cinema", "entertainment"},
	"recharge":        {"prepaid", "mobile recharge", "cashback"},
}

// ExpandKeyword 展开商品关键词
// 表中键与查询词互相包含时，该键及其同义词都会加入结果；查询词本身始终保留。
// 返回小写、去重、排序后的列表；空词返回 nil。
func ExpandKeyword(term string) []string {
	normalized := strings.ToLower(strings.TrimSpace(term))
	if normalized == "" {
		return nil
	}
	set := map[string]struct{}{normalized: {}}
	for key, synonyms := range productSynonyms {
		if !strings.Contains(normalized, key) && !strings.Contains(key, normalized) {
			continue
		}
		set[key] = struct{}{}
		for _, synonym := range synonyms {
			set[strings.ToLower(synonym)] = struct{}{}
		}
	}
	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
