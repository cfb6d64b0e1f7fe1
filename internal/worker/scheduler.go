package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/offeroye/internal/config"
	"github.com/offeroye/internal/constants"
	"github.com/offeroye/internal/logger"
	"github.com/offeroye/internal/queue"

	"github.com/robfig/cron/v3"
)

const (
	defaultRebuildSchedule = "@every 12h"
	rebuildJobTimeout      = 2 * time.Minute
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler 定时重建目录服务
type Scheduler struct {
	name       string
	schedule   string
	cities     []string
	rebuilder  CatalogRebuilder
	runOnStart bool
	cron       *cron.Cron
	runs       atomic.Int64
}

// NewScheduler 创建定时重建服务
func NewScheduler(cfg *config.CatalogConfig, rebuilder CatalogRebuilder) (*Scheduler, error) {
	if rebuilder == nil {
		return nil, errors.New("catalog rebuilder is nil")
	}
	schedule := defaultRebuildSchedule
	location := "UTC"
	var cities []string
	if cfg != nil {
		if trimmed := strings.TrimSpace(cfg.RebuildCron); trimmed != "" {
			schedule = trimmed
		}
		if trimmed := strings.TrimSpace(cfg.Location); trimmed != "" {
			location = trimmed
		}
		cities = append(cities, cfg.Cities...)
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid rebuild cron %q: %w", schedule, err)
	}
	loc, err := time.LoadLocation(location)
	if err != nil {
		logger.Warnw("scheduler_location_invalid", "location", location, "error", err)
		loc = time.UTC
	}

	s := &Scheduler{
		name:       "scheduler",
		schedule:   schedule,
		cities:     cities,
		rebuilder:  rebuilder,
		runOnStart: true,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(cronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		s.runOnce(context.Background(), constants.RebuildReasonSchedule)
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动定时任务，先执行一次重建
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return errors.New("scheduler not initialized")
	}
	if s.runOnStart {
		s.runOnce(ctx, constants.RebuildReasonStartup)
	}
	s.cron.Start()
	logger.Infow("scheduler_started", "schedule", s.schedule, "location", s.cron.Location().String())
	<-ctx.Done()
	return nil
}

// Stop 停止定时任务并等待执行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runs 已执行的重建次数
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

func (s *Scheduler) runOnce(parent context.Context, reason string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("scheduler_rebuild_panic", "reason", reason, "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(parent, rebuildJobTimeout)
	defer cancel()
	s.runs.Add(1)
	_ = runCatalogRebuild(ctx, s.rebuilder, queue.CatalogRebuildPayload{
		Cities: s.cities,
		Reason: reason,
	})
}
