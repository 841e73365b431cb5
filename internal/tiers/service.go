// Package tiers 层级目录服务，负责尺寸策略查询与缓存
package tiers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/tierbed/cache"
	"github.com/anoixa/tierbed/database/models"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
)

const (
	cacheKeyAllHeights  = "tiers:heights:all"
	cacheKeyTierHeights = "tiers:heights:%d"
)

// Service 层级目录服务
type Service struct {
	repo     *tiersrepo.Repository
	cache    cache.Provider
	cacheTTL time.Duration
}

// NewService 创建层级目录服务，cacheProvider 可以为 nil
func NewService(repo *tiersrepo.Repository, cacheProvider cache.Provider, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    cacheProvider,
		cacheTTL: cacheTTL,
	}
}

// HeightsForUpload 计算某次上传应当生成的缩略图高度集合
// 特权用户取所有层级高度的并集，普通用户取自身层级的配置，
// 层级禁用缩略图时返回空集
func (s *Service) HeightsForUpload(ctx context.Context, owner *models.User) ([]int, error) {
	if owner.IsPrivileged() {
		return s.allHeights(ctx)
	}
	if owner.Tier == nil || !owner.Tier.AllowsThumbnails {
		return nil, nil
	}
	return s.tierHeights(ctx, owner.Tier.ID)
}

func (s *Service) allHeights(ctx context.Context) ([]int, error) {
	var heights []int
	if s.cacheGet(ctx, cacheKeyAllHeights, &heights) {
		return heights, nil
	}

	heights, err := s.repo.AllHeights()
	if err != nil {
		return nil, fmt.Errorf("failed to load all thumbnail heights: %w", err)
	}
	s.cacheSet(ctx, cacheKeyAllHeights, heights)
	return heights, nil
}

func (s *Service) tierHeights(ctx context.Context, tierID uint) ([]int, error) {
	key := fmt.Sprintf(cacheKeyTierHeights, tierID)

	var heights []int
	if s.cacheGet(ctx, key, &heights) {
		return heights, nil
	}

	heights, err := s.repo.HeightsForTier(tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load heights for tier %d: %w", tierID, err)
	}
	s.cacheSet(ctx, key, heights)
	return heights, nil
}

// CreateTier 创建层级
func (s *Service) CreateTier(name string, allowsThumbnails, allowsOriginalSize, allowsExpiringLink bool) (*models.Tier, error) {
	return s.repo.CreateTier(name, allowsThumbnails, allowsOriginalSize, allowsExpiringLink)
}

// AddThumbnailSize 添加尺寸策略并使缓存失效
func (s *Service) AddThumbnailSize(ctx context.Context, tierID uint, height int) (*models.ThumbnailSize, error) {
	size, err := s.repo.AddThumbnailSize(tierID, height)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tierID)
	return size, nil
}

// ListTiers 列出所有层级
func (s *Service) ListTiers() ([]*models.Tier, error) {
	return s.repo.ListTiers()
}

// SizeForOwner 选择缩略图记录引用的尺寸策略
// 有 tier 且存在 (tier, height) 时优先精确匹配，否则退回任意匹配高度的策略
func (s *Service) SizeForOwner(owner *models.User, height int) (*models.ThumbnailSize, error) {
	if owner.Tier != nil {
		size, err := s.repo.SizeForTierAndHeight(owner.Tier.ID, height)
		if err == nil {
			return size, nil
		}
	}
	return s.repo.AnySizeForHeight(height)
}

func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err != nil {
		if !cache.IsCacheMiss(err) {
			log.Printf("[Tiers] Cache get failed for %s: %v", key, err)
		}
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.Printf("[Tiers] Cache set failed for %s: %v", key, err)
	}
}

func (s *Service) invalidate(ctx context.Context, tierID uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cacheKeyAllHeights)
	_ = s.cache.Delete(ctx, fmt.Sprintf(cacheKeyTierHeights, tierID))
}
