package query

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/offeroye/internal/models"
)

const (
	// ResultLimit 单次返回的最大优惠数
	ResultLimit = 50
	// SpotlightSize 今日精选最大数量
	SpotlightSize = 6
	// SpotlightBackfill 精选不足时最多补充的候选数
	SpotlightBackfill = 10
)

// ShuffleFunc 原地打乱优惠列表
type ShuffleFunc func([]models.Coupon)

// Stats 全量目录统计
type Stats struct {
	Sources     []string       `json:"sources"`
	SourceCount int            `json:"source_count"`
	Cities      []string       `json:"cities"`
	Categories  map[string]int `json:"categories"`
	Total       int            `json:"total"`
}

// Result 查询结果
type Result struct {
	Coupons   []models.Coupon `json:"coupons"`
	Total     int             `json:"total"`
	Spotlight []models.Coupon `json:"spotlight"`
	Stats     Stats           `json:"stats"`
}

// Engine 查询引擎
type Engine struct {
	shuffle ShuffleFunc
}

// NewEngine 创建查询引擎，精选使用随机打乱
func NewEngine() *Engine {
	return &Engine{shuffle: randomShuffle}
}

// NewEngineWithShuffle 创建使用指定打乱函数的查询引擎
func NewEngineWithShuffle(shuffle ShuffleFunc) *Engine {
	if shuffle == nil {
		shuffle = randomShuffle
	}
	return &Engine{shuffle: shuffle}
}

func randomShuffle(coupons []models.Coupon) {
	rand.Shuffle(len(coupons), func(i, j int) {
		coupons[i], coupons[j] = coupons[j], coupons[i]
	})
}

// Run 对目录执行查询
// 结果截断到 ResultLimit，Total 为截断前的匹配数；无筛选条件时附带精选。
func (e *Engine) Run(catalog *models.Catalog, q Query) Result {
	var coupons []models.Coupon
	if catalog != nil {
		coupons = catalog.Coupons
	}
	matched := Filter(coupons, q)
	result := Result{
		Coupons:   Limit(matched, ResultLimit),
		Total:     len(matched),
		Spotlight: []models.Coupon{},
		Stats:     Aggregate(coupons),
	}
	if !q.HasFilters() {
		result.Spotlight = e.Spotlight(coupons)
	}
	return result
}

// Filter 按查询条件筛选，保持目录顺序，不截断
func Filter(coupons []models.Coupon, q Query) []models.Coupon {
	search := strings.ToLower(q.Search)
	productTerms := ExpandKeyword(q.Product)

	matched := make([]models.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if q.Source != "" && c.Source != q.Source {
			continue
		}
		if !isPassThrough(q.Category) && c.Category != q.Category {
			continue
		}
		if !isPassThrough(q.City) && c.City != q.City && c.City != models.CityAll {
			continue
		}
		if search != "" && !containsAny([]string{c.Description, c.CodeValue()}, []string{search}) {
			continue
		}
		if len(productTerms) > 0 && !containsAny([]string{c.Description, c.Source, c.Category, c.CodeValue()}, productTerms) {
			continue
		}
		matched = append(matched, c)
	}
	return matched
}

// containsAny 任一字段（忽略大小写）包含任一小写词即返回 true
func containsAny(fields []string, terms []string) bool {
	for _, field := range fields {
		lowered := strings.ToLower(field)
		for _, term := range terms {
			if strings.Contains(lowered, term) {
				return true
			}
		}
	}
	return false
}

// Limit 截断到至多 n 条
func Limit(coupons []models.Coupon, n int) []models.Coupon {
	if n < 0 || len(coupons) <= n {
		return coupons
	}
	return coupons[:n]
}

// Spotlight 计算今日精选
// 热门优先于精选，二者互斥；候选打乱后不足 SpotlightSize 时按目录顺序补充。
func (e *Engine) Spotlight(coupons []models.Coupon) []models.Coupon {
	selected := make([]bool, len(coupons))
	candidates := make([]models.Coupon, 0, SpotlightSize)
	for i, c := range coupons {
		if c.IsHot {
			candidates = append(candidates, c)
			selected[i] = true
		}
	}
	for i, c := range coupons {
		if c.IsFeatured && !c.IsHot {
			candidates = append(candidates, c)
			selected[i] = true
		}
	}
	if e != nil && e.shuffle != nil {
		e.shuffle(candidates)
	}

	if len(candidates) < SpotlightSize {
		extra := 0
		for i, c := range coupons {
			if extra >= SpotlightBackfill {
				break
			}
			if selected[i] {
				continue
			}
			candidates = append(candidates, c)
			extra++
		}
	}
	return Limit(candidates, SpotlightSize)
}

// Aggregate 统计全量目录的来源、城市与分类分布
func Aggregate(coupons []models.Coupon) Stats {
	sources := make(map[string]struct{})
	cities := make(map[string]struct{})
	categories := make(map[string]int)
	for _, c := range coupons {
		if c.Source != "" {
			sources[c.Source] = struct{}{}
		}
		if c.IsLocal() {
			cities[c.City] = struct{}{}
		}
		if c.Category != "" && c.Category != models.CategoryAll {
			categories[c.Category]++
		}
	}
	sourceList := sortedKeys(sources)
	return Stats{
		Sources:     sourceList,
		SourceCount: len(sourceList),
		Cities:      sortedKeys(cities),
		Categories:  categories,
		Total:       len(coupons),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
