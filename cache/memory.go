package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"
)

// MemoryCache 基于 Ristretto 的进程内缓存
type MemoryCache struct {
	client *ristretto.Cache
}

// NewMemoryCache 创建新的内存缓存
func NewMemoryCache() (*MemoryCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     16 << 20, // 16MB
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &MemoryCache{client: cache}, nil
}

// Set 设置缓存项
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if c.client.SetWithTTL(key, data, int64(len(data)), expiration) {
		// 等待值被实际写入
		c.client.Wait()
	}
	return nil
}

// Get 获取缓存项
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	value, found := c.client.Get(key)
	if !found {
		return ErrCacheMiss
	}

	data, ok := value.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

// Delete 删除缓存项
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.client.Del(key)
	return nil
}

// Close 关闭缓存
func (c *MemoryCache) Close() error {
	c.client.Close()
	return nil
}

// Name 返回缓存提供者名称
func (c *MemoryCache) Name() string {
	return "memory"
}
