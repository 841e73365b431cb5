package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/tierbed/config"
)

// NewProvider 按配置创建缓存提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "memory", "":
		provider, err := NewMemoryCache()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory cache: %w", err)
		}
		log.Println("[Cache] Successfully initialized 'memory' cache provider")
		return provider, nil
	case "redis":
		provider, err := NewRedisCache(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		log.Println("[Cache] Successfully initialized 'redis' cache provider")
		return provider, nil
	default:
		return nil, fmt.Errorf("invalid cache type specified in config: %s", cfg.CacheType)
	}
}
