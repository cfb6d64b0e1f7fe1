package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/offeroye/internal/catalog"
	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/models"
	"github.com/offeroye/internal/repository"
	"github.com/offeroye/internal/service"
)

func main() {
	var (
		cityList      string
		once          bool
		intervalHours int
		maxIterations int
	)
	flag.StringVar(&cityList, "city", "", "构建的城市，逗号分隔（为空使用配置）")
	flag.BoolVar(&once, "once", false, "只构建一次后退出")
	flag.IntVar(&intervalHours, "interval", 0, "循环构建间隔（小时，为空使用配置）")
	flag.IntVar(&maxIterations, "max-iterations", 0, "最多构建次数（0 为不限）")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	tables, err := catalog.LoadTables(cfg.Catalog.DataFile)
	if err != nil {
		stdLog.Fatalf("数据表加载失败: %v", err)
	}
	cities := splitCities(cityList)
	if len(cities) == 0 {
		cities = cfg.Catalog.Cities
	}
	interval := cfg.Catalog.RefreshInterval()
	if intervalHours > 0 {
		interval = time.Duration(intervalHours) * time.Hour
	}

	catalogService := service.NewCatalogService(
		catalog.NewBuilder(tables),
		repository.NewFileCatalogRepository(cfg.Catalog.OutputFile),
		service.CatalogServiceOptions{
			Cities:   cities,
			TTL:      interval,
			Location: cfg.Catalog.TimeLocation(),
		},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, catalogService, cities, once, interval, maxIterations); err != nil {
		stdLog.Fatalf("目录构建失败: %v", err)
	}
}

func run(ctx context.Context, catalogService *service.CatalogService, cities []string, once bool, interval time.Duration, maxIterations int) error {
	for iteration := 1; ; iteration++ {
		built, err := catalogService.Rebuild(ctx, cities)
		if err != nil {
			return err
		}
		printSummary(built, catalogService.Status().DataFile)

		if once || (maxIterations > 0 && iteration >= maxIterations) {
			return nil
		}
		logger.Infow("catalog_cli_sleep", "next_run", time.Now().Add(interval).Format(time.RFC3339))
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Infow("catalog_cli_stopped")
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func printSummary(built *models.Catalog, path string) {
	summary := catalog.Summarize(built)
	fmt.Printf("Saved %d coupons to %s\n", summary.Total, path)
	fmt.Println("By source:")
	for _, item := range summary.Sources {
		fmt.Printf("  %-28s %d\n", item.Name, item.Count)
	}
	if len(summary.Cities) > 0 {
		fmt.Println("By city:")
		for _, item := range summary.Cities {
			fmt.Printf("  %-28s %d\n", item.Name, item.Count)
		}
	}
}

func splitCities(value string) []string {
	var cities []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cities = append(cities, trimmed)
		}
	}
	return cities
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-city Delhi,Mumbai] [-once] [-interval 4] [-max-iterations N]\n", os.Args[0])
		flag.PrintDefaults()
	}
}
