package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/offeroye/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "oo"

// 未启用 Redis 时所有读写均为空操作
var state = struct {
	sync.RWMutex
	client *redis.Client
	prefix string
}{}

// InitRedis 初始化 Redis 客户端，未启用时清空已有客户端
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		return Close()
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	state.Lock()
	previous := state.client
	state.client = client
	state.prefix = strings.TrimSpace(cfg.Prefix)
	state.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	return nil
}

// Ping 检查 Redis 连通性
func Ping(ctx context.Context) error {
	client := Client()
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// Close 关闭 Redis 客户端
func Close() error {
	state.Lock()
	client := state.client
	state.client = nil
	state.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

// Prefix 当前 key 前缀
func Prefix() string {
	state.RLock()
	defer state.RUnlock()
	if state.prefix == "" {
		return defaultPrefix
	}
	return state.prefix
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return Client() != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	state.RLock()
	defer state.RUnlock()
	return state.client
}

// GetJSON 获取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	client := Client()
	if client == nil {
		return false, nil
	}
	payload, err := client.Get(ctx, buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client := Client()
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, buildKey(key), payload, ttl).Err()
}

func buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return Prefix()
	}
	return Prefix() + ":" + trimmed
}
