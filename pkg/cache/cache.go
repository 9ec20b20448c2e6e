// Package cache 参考数据查询结果的缓存抽象。
//
// 值以 JSON 字节保存，Redis 与进程内实现可互换。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache 查询结果缓存
type Cache interface {
	// Get 读取并反序列化到 dest，未命中返回 false
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set 序列化写入，ttl<=0 使用实现的默认过期时间
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Memory 基于 go-cache 的进程内缓存，Redis 未启用时使用
type Memory struct {
	store *gocache.Cache
}

// NewMemory 创建进程内缓存
func NewMemory(ttl, cleanup time.Duration) *Memory {
	return &Memory{store: gocache.New(ttl, cleanup)}
}

// Get 读取缓存
func (m *Memory) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, found := m.store.Get(key)
	if !found {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		m.store.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("反序列化缓存 %s 失败: %w", key, err)
	}
	return true, nil
}

// Set 写入缓存
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化缓存 %s 失败: %w", key, err)
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.store.Set(key, data, ttl)
	return nil
}

// Flush 清空缓存
func (m *Memory) Flush() { m.store.Flush() }

// Len 当前条目数
func (m *Memory) Len() int { return m.store.ItemCount() }

// Nop 不缓存任何内容
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (Nop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
