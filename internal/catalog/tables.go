package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yml
var defaultTablesYAML []byte

// ErrMalformedTables 数据表结构错误
var ErrMalformedTables = errors.New("catalog tables malformed")

// Tables 优惠数据表
type Tables struct {
	Merchants []Merchant `yaml:"merchants"`
	Cities    []City     `yaml:"cities"`
}

// Merchant 全国商家
type Merchant struct {
	Name   string  `yaml:"name"`
	URL    string  `yaml:"url"`
	Offers []Offer `yaml:"offers"`
}

// City 城市及其本地餐厅优惠
type City struct {
	Name   string  `yaml:"name"`
	Offers []Offer `yaml:"offers"`
}

// Offer 单条优惠
// Code 为 nil 时表示无需优惠码。
type Offer struct {
	Code        *string `yaml:"code"`
	Description string  `yaml:"description"`
	Discount    string  `yaml:"discount"`
	MinOrder    string  `yaml:"min_order"`
	Expires     string  `yaml:"expires"`
	Category    string  `yaml:"category"`
	URL         string  `yaml:"url"`
	Hot         bool    `yaml:"hot"`
	Featured    bool    `yaml:"featured"`
}

// DefaultTables 解析内置数据表
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTablesYAML)
}

// LoadTables 从文件加载数据表，路径为空时使用内置数据
func LoadTables(path string) (*Tables, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog tables %s: %w", path, err)
	}
	return ParseTables(data)
}

// ParseTables 解析 YAML 数据表并校验
func ParseTables(data []byte) (*Tables, error) {
	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTables, err)
	}
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// Validate 校验数据表
func (t *Tables) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: tables is nil", ErrMalformedTables)
	}
	for i, m := range t.Merchants {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: merchant #%d has no name", ErrMalformedTables, i)
		}
		for j, offer := range m.Offers {
			if strings.TrimSpace(offer.Description) == "" {
				return fmt.Errorf("%w: merchant %s offer #%d has no description", ErrMalformedTables, m.Name, j)
			}
		}
	}
	seen := make(map[string]struct{}, len(t.Cities))
	for i, c := range t.Cities {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("%w: city #%d has no name", ErrMalformedTables, i)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate city %s", ErrMalformedTables, name)
		}
		seen[key] = struct{}{}
		for j, offer := range c.Offers {
			if strings.TrimSpace(offer.Description) == "" {
				return fmt.Errorf("%w: city %s offer #%d has no description", ErrMalformedTables, name, j)
			}
		}
	}
	return nil
}

// CityNames 按表中顺序返回城市列表
func (t *Tables) CityNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Cities))
	for _, c := range t.Cities {
		names = append(names, c.Name)
	}
	return names
}

// MerchantNames 按表中顺序返回商家列表
func (t *Tables) MerchantNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Merchants))
	for _, m := range t.Merchants {
		names = append(names, m.Name)
	}
	return names
}

func (t *Tables) findCity(name string) (*City, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i := range t.Cities {
		if strings.ToLower(t.Cities[i].Name) == key {
			return &t.Cities[i], true
		}
	}
	return nil, false
}
