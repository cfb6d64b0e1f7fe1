package service

import "errors"

var (
	// ErrCatalogUnavailable 目录无法构建且无可用文件
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrCatalogNotPersisted 目录已构建但写入文件失败
	ErrCatalogNotPersisted = errors.New("catalog built but not persisted")
	// ErrVisitInvalid 点击记录参数无效
	ErrVisitInvalid = errors.New("visit input invalid")
)
