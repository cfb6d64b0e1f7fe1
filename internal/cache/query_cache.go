package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

const queryResultNamespace = "coupons:query"

// QueryResultKey 查询结果缓存键
// 键中包含快照版本号，目录重建后旧结果自然失效。
func QueryResultKey(generation, queryKey string) string {
	sum := sha1.Sum([]byte(queryKey))
	return fmt.Sprintf("%s:%s:%s", queryResultNamespace, generation, hex.EncodeToString(sum[:]))
}

// GetQueryResult 读取查询结果缓存
func GetQueryResult(ctx context.Context, generation, queryKey string, dest interface{}) (bool, error) {
	if generation == "" {
		return false, nil
	}
	return GetJSON(ctx, QueryResultKey(generation, queryKey), dest)
}

// SetQueryResult 写入查询结果缓存
func SetQueryResult(ctx context.Context, generation, queryKey string, value interface{}, ttl time.Duration) error {
	if generation == "" || ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, QueryResultKey(generation, queryKey), value, ttl)
}
