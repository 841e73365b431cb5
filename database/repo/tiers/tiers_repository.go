// Package tiers 管理订阅层级与缩略图尺寸策略
package tiers

import (
	"errors"
	"fmt"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/internal/apperrors"
	"gorm.io/gorm"
)

// Repository 层级仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的层级仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateTier 创建层级，名称非空且唯一
func (r *Repository) CreateTier(name string, allowsThumbnails, allowsOriginalSize, allowsExpiringLink bool) (*models.Tier, error) {
	if name == "" {
		return nil, apperrors.Validationf("tier must have a name")
	}

	var count int64
	if err := r.db.Model(&models.Tier{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check tier existence: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Validationf("tier %q already exists", name)
	}

	tier := &models.Tier{
		Name:               name,
		AllowsThumbnails:   allowsThumbnails,
		AllowsOriginalSize: allowsOriginalSize,
		AllowsExpiringLink: allowsExpiringLink,
	}
	if err := r.db.Create(tier).Error; err != nil {
		return nil, fmt.Errorf("failed to create tier: %w", err)
	}
	return tier, nil
}

// AddThumbnailSize 为层级添加尺寸策略
// 父级禁用缩略图或 (tier, height) 重复时返回 PolicyViolation
func (r *Repository) AddThumbnailSize(tierID uint, height int) (*models.ThumbnailSize, error) {
	if height < 1 {
		return nil, apperrors.Validationf("thumbnail height must be >= 1, got %d", height)
	}

	tier, err := r.GetTierByID(tierID)
	if err != nil {
		return nil, err
	}
	if !tier.AllowsThumbnails {
		return nil, apperrors.PolicyViolationf("tier %q does not allow thumbnails", tier.Name)
	}

	var count int64
	if err := r.db.Model(&models.ThumbnailSize{}).
		Where("tier_id = ? AND height = ?", tierID, height).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check size existence: %w", err)
	}
	if count > 0 {
		return nil, apperrors.PolicyViolationf("tier %q already has a %dpx thumbnail size", tier.Name, height)
	}

	size := &models.ThumbnailSize{TierID: tierID, Height: height}
	if err := r.db.Create(size).Error; err != nil {
		return nil, fmt.Errorf("failed to create thumbnail size: %w", err)
	}
	return size, nil
}

// GetTierByID 通过 ID 获取层级
func (r *Repository) GetTierByID(id uint) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.First(&tier, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("tier %d", id)
		}
		return nil, err
	}
	return &tier, nil
}

// GetTierByName 通过名称获取层级
func (r *Repository) GetTierByName(name string) (*models.Tier, error) {
	var tier models.Tier
	err := r.db.Where("name = ?", name).First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("tier %q", name)
		}
		return nil, err
	}
	return &tier, nil
}

// ListTiers 列出所有层级及其尺寸策略
func (r *Repository) ListTiers() ([]*models.Tier, error) {
	var tiers []*models.Tier
	err := r.db.Preload("ThumbnailSizes").Order("id asc").Find(&tiers).Error
	return tiers, err
}

// HeightsForTier 返回层级配置的高度，升序
func (r *Repository) HeightsForTier(tierID uint) ([]int, error) {
	var heights []int
	err := r.db.Model(&models.ThumbnailSize{}).
		Where("tier_id = ?", tierID).
		Order("height asc").
		Pluck("height", &heights).Error
	return heights, err
}

// AllHeights 返回所有层级去重后的高度并集，升序
// 特权用户的上传使用全集而不是自身层级的配置
func (r *Repository) AllHeights() ([]int, error) {
	var heights []int
	err := r.db.Model(&models.ThumbnailSize{}).
		Distinct("height").
		Order("height asc").
		Pluck("height", &heights).Error
	return heights, err
}

// SizeForTierAndHeight 查找 (tier, height) 对应的尺寸策略
func (r *Repository) SizeForTierAndHeight(tierID uint, height int) (*models.ThumbnailSize, error) {
	var size models.ThumbnailSize
	err := r.db.Where("tier_id = ? AND height = ?", tierID, height).First(&size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("thumbnail size %dpx for tier %d", height, tierID)
		}
		return nil, err
	}
	return &size, nil
}

// AnySizeForHeight 查找任意层级下匹配高度的尺寸策略，最后定义的优先
// 用于没有 tier 的特权用户，字段仅作记录用途
func (r *Repository) AnySizeForHeight(height int) (*models.ThumbnailSize, error) {
	var size models.ThumbnailSize
	err := r.db.Where("height = ?", height).Order("id desc").First(&size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("thumbnail size %dpx", height)
		}
		return nil, err
	}
	return &size, nil
}

// CountTiers 统计层级总数
func (r *Repository) CountTiers() (int64, error) {
	var count int64
	err := r.db.Model(&models.Tier{}).Count(&count).Error
	return count, err
}

// DeleteTier 删除层级并级联删除其尺寸策略
// 已生成的缩略图不受影响
func (r *Repository) DeleteTier(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tier_id = ?", id).Delete(&models.ThumbnailSize{}).Error; err != nil {
			return fmt.Errorf("failed to delete tier sizes: %w", err)
		}
		result := tx.Delete(&models.Tier{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFoundf("tier %d", id)
		}
		return nil
	})
}
