// Package dashboard 汇总全局统计数据，带缓存
package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/tierbed/cache"
	"github.com/anoixa/tierbed/database/repo/accounts"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute
)

// Stats 全局统计
type Stats struct {
	Users        int64 `json:"users"`
	Tiers        int64 `json:"tiers"`
	Images       int64 `json:"images"`
	Thumbnails   int64 `json:"thumbnails"`
	StorageBytes int64 `json:"storage_bytes"`
}

// Service 统计服务
type Service struct {
	accountsRepo *accounts.Repository
	tiersRepo    *tiersrepo.Repository
	imagesRepo   *imagesrepo.Repository
	thumbRepo    *imagesrepo.ThumbnailRepository
	cache        cache.Provider
}

// NewService 创建统计服务，cacheProvider 可以为 nil
func NewService(
	accountsRepo *accounts.Repository,
	tiersRepo *tiersrepo.Repository,
	imagesRepo *imagesrepo.Repository,
	thumbRepo *imagesrepo.ThumbnailRepository,
	cacheProvider cache.Provider,
) *Service {
	return &Service{
		accountsRepo: accountsRepo,
		tiersRepo:    tiersRepo,
		imagesRepo:   imagesRepo,
		thumbRepo:    thumbRepo,
		cache:        cacheProvider,
	}
}

// GetStats 获取统计数据，优先走缓存
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		var cached Stats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !cache.IsCacheMiss(err) {
			log.Printf("[Dashboard] Cache get failed: %v", err)
		}
	}

	stats, err := s.computeStats()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			log.Printf("[Dashboard] Cache set failed: %v", err)
		}
	}
	return stats, nil
}

// RefreshCache 强制重算并回填缓存
func (s *Service) RefreshCache(ctx context.Context) error {
	stats, err := s.computeStats()
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL)
}

func (s *Service) computeStats() (*Stats, error) {
	users, err := s.accountsRepo.CountUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	tiers, err := s.tiersRepo.CountTiers()
	if err != nil {
		return nil, fmt.Errorf("failed to count tiers: %w", err)
	}
	images, err := s.imagesRepo.CountImages()
	if err != nil {
		return nil, fmt.Errorf("failed to count images: %w", err)
	}
	thumbnails, err := s.thumbRepo.CountThumbnails()
	if err != nil {
		return nil, fmt.Errorf("failed to count thumbnails: %w", err)
	}
	storageBytes, err := s.imagesRepo.TotalFileSize()
	if err != nil {
		return nil, fmt.Errorf("failed to sum storage usage: %w", err)
	}

	return &Stats{
		Users:        users,
		Tiers:        tiers,
		Images:       images,
		Thumbnails:   thumbnails,
		StorageBytes: storageBytes,
	}, nil
}
