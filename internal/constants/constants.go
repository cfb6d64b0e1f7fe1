package constants

// 队列与任务常量
const (
	QueueDefault       = "default"
	TaskCatalogRebuild = "catalog:rebuild"
)

// 目录重建触发原因
const (
	RebuildReasonSchedule = "schedule"
	RebuildReasonManual   = "manual"
	RebuildReasonStartup  = "startup"
	RebuildReasonCLI      = "cli"
)
