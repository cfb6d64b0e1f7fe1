package query

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/offeroye/internal/models"
)

// ErrInvalidQuery 查询参数结构非法（例如同名参数重复出现）
var ErrInvalidQuery = errors.New("invalid query")

// 查询参数名
const (
	ParamSource        = "source"
	ParamCategory      = "category"
	ParamCity          = "city"
	ParamSearch        = "search"
	ParamProduct       = "product"
	ParamProductSearch = "product_search"
)

// Query 优惠筛选条件，零值匹配全部
type Query struct {
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
	City     string `json:"city,omitempty"`
	Search   string `json:"search,omitempty"`
	Product  string `json:"product,omitempty"`
}

// HasFilters 是否携带实际生效的筛选条件
// category/city 为 all 时属于透传，不计入。
func (q Query) HasFilters() bool {
	return q.Source != "" ||
		!isPassThrough(q.Category) ||
		!isPassThrough(q.City) ||
		q.Search != "" ||
		q.Product != ""
}

// Key 返回查询的规范化标识，用于缓存键
func (q Query) Key() string {
	return url.Values{
		"s":  {q.Source},
		"c":  {q.Category},
		"ct": {q.City},
		"q":  {q.Search},
		"p":  {q.Product},
	}.Encode()
}

func isPassThrough(value string) bool {
	return value == "" || value == models.CategoryAll
}

// ParseQuery 从 URL 参数解析查询
// 同一参数出现多次视为调用方错误，返回 ErrInvalidQuery。
func ParseQuery(values url.Values) (Query, error) {
	var q Query
	var err error
	if q.Source, err = single(values, ParamSource); err != nil {
		return Query{}, err
	}
	if q.Category, err = single(values, ParamCategory); err != nil {
		return Query{}, err
	}
	if q.City, err = single(values, ParamCity); err != nil {
		return Query{}, err
	}
	if q.Search, err = single(values, ParamSearch); err != nil {
		return Query{}, err
	}
	product, err := single(values, ParamProduct)
	if err != nil {
		return Query{}, err
	}
	productSearch, err := single(values, ParamProductSearch)
	if err != nil {
		return Query{}, err
	}
	switch {
	case product != "" && productSearch != "" && product != productSearch:
		return Query{}, fmt.Errorf("%w: %s and %s disagree", ErrInvalidQuery, ParamProduct, ParamProductSearch)
	case product != "":
		q.Product = product
	default:
		q.Product = productSearch
	}
	return q, nil
}

func single(values url.Values, key string) (string, error) {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return "", nil
	}
	if len(raw) > 1 {
		return "", fmt.Errorf("%w: parameter %q given %d times", ErrInvalidQuery, key, len(raw))
	}
	return strings.TrimSpace(raw[0]), nil
}
