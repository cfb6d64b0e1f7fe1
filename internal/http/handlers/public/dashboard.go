package public

import (
	"embed"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/offeroye/internal/http/response"
	"github.com/offeroye/internal/i18n"
	"github.com/offeroye/internal/models"
	"github.com/offeroye/internal/query"

	"github.com/gin-gonic/gin"
)

// DashboardTemplateName 优惠页面模板名
const DashboardTemplateName = "dashboard.html"

//go:embed templates/*.html
var templateFS embed.FS

var dashboardFuncs = template.FuncMap{
	"formatTimestamp": formatTimestamp,
	"categoryLabel":   categoryLabel,
	"codeOrDeal": func(c models.Coupon) string {
		if c.HasCode() {
			return c.CodeValue()
		}
		return "NO CODE NEEDED"
	},
	"visitID": visitID,
}

// DashboardTemplate 解析内置页面模板
func DashboardTemplate() *template.Template {
	return template.Must(template.New(DashboardTemplateName).Funcs(dashboardFuncs).ParseFS(templateFS, "templates/*.html"))
}

type dashboardView struct {
	Query       query.Query
	Coupons     []models.Coupon
	Spotlight   []models.Coupon
	Total       int
	Stats       query.Stats
	Sources     []string
	Cities      []string
	Categories  []string
	LastUpdated string
	Empty       bool
	Error       string
	Year        int
}

// Dashboard 渲染优惠页面
func (h *Handler) Dashboard(c *gin.Context) {
	view := dashboardView{Year: time.Now().Year()}
	q, err := query.ParseQuery(c.Request.URL.Query())
	if err != nil {
		view.Error = i18n.T(i18n.ResolveLocale(c), "error.query_invalid")
		q = query.Query{}
	}
	view.Query = q

	result, err := h.CouponService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, response.CodeInternal, "error.dashboard_render_failed", err)
		return
	}
	view.Coupons = result.Coupons
	view.Spotlight = result.Spotlight
	view.Total = result.Total
	view.Stats = result.Stats
	view.LastUpdated = result.LastUpdated
	view.Empty = result.Stats.Total == 0
	view.Sources = h.dashboardSources(result.Stats)
	view.Cities = h.dashboardCities(result.Stats)
	view.Categories = sortedCategories(result.Stats.Categories)

	c.HTML(http.StatusOK, DashboardTemplateName, view)
}

// dashboardSources 下拉框中的商家：数据表中的商家优先，再补充统计中的其余来源
func (h *Handler) dashboardSources(stats query.Stats) []string {
	var sources []string
	if h.Builder != nil && h.Builder.Tables() != nil {
		sources = append(sources, h.Builder.Tables().MerchantNames()...)
	}
	return mergeUnique(sources, stats.Sources)
}

func (h *Handler) dashboardCities(stats query.Stats) []string {
	var cities []string
	if h.Builder != nil && h.Builder.Tables() != nil {
		cities = append(cities, h.Builder.Tables().CityNames()...)
	}
	return mergeUnique(cities, stats.Cities)
}

func mergeUnique(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	result := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, item := range list {
			if _, ok := seen[item]; ok || item == "" {
				continue
			}
			seen[item] = struct{}{}
			result = append(result, item)
		}
	}
	return result
}

func sortedCategories(categories map[string]int) []string {
	result := make([]string, 0, len(categories))
	for name := range categories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func formatTimestamp(value string) string {
	if value == "" {
		return "never"
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02 15:04")
		}
	}
	return value
}

func categoryLabel(category string) string {
	switch category {
	case "food":
		return "Food & Dining"
	case "":
		return ""
	}
	return strings.ToUpper(category[:1]) + category[1:]
}

// visitID 点击记录使用的优惠标识：有优惠码用优惠码，否则用描述
func visitID(c models.Coupon) string {
	if c.HasCode() {
		return c.CodeValue()
	}
	return c.Description
}
