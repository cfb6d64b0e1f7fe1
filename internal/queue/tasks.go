package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/offeroye/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCatalogRebuild 目录重建任务
	TaskCatalogRebuild = constants.TaskCatalogRebuild
)

// CatalogRebuildPayload 目录重建任务载荷
type CatalogRebuildPayload struct {
	Cities []string `json:"cities,omitempty"`
	Reason string   `json:"reason"`
}

// NewCatalogRebuildTask 创建目录重建任务
func NewCatalogRebuildTask(payload CatalogRebuildPayload) (*asynq.Task, error) {
	payload.Reason = strings.TrimSpace(payload.Reason)
	if payload.Reason == "" {
		payload.Reason = constants.RebuildReasonManual
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRebuild, body), nil
}

// ParseCatalogRebuildPayload 解析目录重建任务载荷
func ParseCatalogRebuildPayload(task *asynq.Task) (CatalogRebuildPayload, error) {
	var payload CatalogRebuildPayload
	if task == nil {
		return payload, errors.New("task is nil")
	}
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	cities := make([]string, 0, len(payload.Cities))
	for _, city := range payload.Cities {
		if trimmed := strings.TrimSpace(city); trimmed != "" {
			cities = append(cities, trimmed)
		}
	}
	payload.Cities = cities
	return payload, nil
}
