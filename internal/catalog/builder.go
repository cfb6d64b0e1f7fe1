package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/offeroye/internal/models"
)

const (
	// FoodCategory 城市餐厅优惠的分类
	FoodCategory = "food"
	// FreeDeliverySource 免配送费优惠的来源名称
	FreeDeliverySource = "Swiggy Delivery"

	freeDeliveryMarker = "Free Delivery"
	venueSeparator     = " at "
)

// Builder 优惠目录构建器
type Builder struct {
	tables *Tables
}

// NewBuilder 创建构建器
func NewBuilder(tables *Tables) *Builder {
	return &Builder{tables: tables}
}

// Tables 返回构建器使用的数据表
func (b *Builder) Tables() *Tables {
	if b == nil {
		return nil
	}
	return b.tables
}

// Build 构建优惠目录
// cities 为空或包含 all 时展开全部城市；未知城市不产生任何优惠。
func (b *Builder) Build(cities []string, now time.Time) (*models.Catalog, error) {
	if b == nil || b.tables == nil {
		return nil, ErrMalformedTables
	}
	if err := b.tables.Validate(); err != nil {
		return nil, err
	}
	timestamp := now.Format(time.RFC3339)

	coupons := make([]models.Coupon, 0, b.estimateSize())
	for _, merchant := range b.tables.Merchants {
		for _, offer := range merchant.Offers {
			url := offer.URL
			if url == "" {
				url = merchant.URL
			}
			category := offer.Category
			if category == "" {
				category = models.CategoryAll
			}
			coupons = append(coupons, models.Coupon{
				Code:        copyCode(offer.Code),
				Description: offer.Description,
				Discount:    offer.Discount,
				MinOrder:    offer.MinOrder,
				Expires:     offer.Expires,
				URL:         url,
				Source:      merchant.Name,
				Category:    category,
				City:        models.CityAll,
				Timestamp:   timestamp,
				IsHot:       offer.Hot,
				IsFeatured:  offer.Featured,
			})
		}
	}

	for _, name := range b.ResolveCities(cities) {
		city, ok := b.tables.findCity(name)
		if !ok {
			continue
		}
		for _, offer := range city.Offers {
			coupons = append(coupons, models.Coupon{
				Code:        copyCode(offer.Code),
				Description: offer.Description,
				Discount:    offer.Discount,
				MinOrder:    offer.MinOrder,
				Expires:     offer.Expires,
				URL:         offer.URL,
				Source:      RestaurantSource(offer.Description, city.Name),
				Category:    FoodCategory,
				City:        city.Name,
				Timestamp:   timestamp,
				IsHot:       offer.Hot,
				IsFeatured:  offer.Featured,
			})
		}
	}

	return models.NewCatalog(coupons, now), nil
}

// ResolveCities 解析请求的城市列表
// 返回值保持请求顺序并去重；未请求或请求 all 时返回表中全部城市。
func (b *Builder) ResolveCities(requested []string) []string {
	if b == nil || b.tables == nil {
		return nil
	}
	cleaned := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, raw := range requested {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, models.CityAll) {
			return b.tables.CityNames()
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, name)
	}
	if len(cleaned) == 0 {
		return b.tables.CityNames()
	}
	return cleaned
}

func (b *Builder) estimateSize() int {
	size := 0
	for _, m := range b.tables.Merchants {
		size += len(m.Offers)
	}
	for _, c := range b.tables.Cities {
		size += len(c.Offers)
	}
	return size
}

// RestaurantSource 从餐厅优惠描述推导来源名称
func RestaurantSource(description, city string) string {
	if idx := strings.LastIndex(description, venueSeparator); idx >= 0 {
		return description[idx+len(venueSeparator):]
	}
	if strings.Contains(description, freeDeliveryMarker) {
		return FreeDeliverySource
	}
	return city + " Food"
}

func copyCode(code *string) *string {
	if code == nil {
		return nil
	}
	value := *code
	return &value
}

// NameCount 名称计数
type NameCount struct {
	Name  string
	Count int
}

// Summary 目录汇总
type Summary struct {
	Total   int
	Sources []NameCount
	Cities  []NameCount
}

// Summarize 按来源与城市统计优惠数量，结果按名称排序
func Summarize(catalog *models.Catalog) Summary {
	summary := Summary{Total: catalog.Len()}
	if catalog.Empty() {
		return summary
	}
	sources := make(map[string]int)
	cities := make(map[string]int)
	for _, c := range catalog.Coupons {
		sources[c.Source]++
		if c.IsLocal() {
			cities[c.City]++
		}
	}
	summary.Sources = sortedCounts(sources)
	summary.Cities = sortedCounts(cities)
	return summary
}

func sortedCounts(counts map[string]int) []NameCount {
	result := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, NameCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
