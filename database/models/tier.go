package models

import "gorm.io/gorm"

// Tier 订阅层级，三个能力开关控制原图访问、缩略图生成和过期链接签发
type Tier struct {
	gorm.Model
	// 标志列不带 default 标签，gorm 会跳过带默认值的零值字段，
	// 导致显式的 false 落库成 true
	Name               string `gorm:"uniqueIndex:idx_tier_name;size:25;not null" json:"name"`
	AllowsThumbnails   bool   `gorm:"not null" json:"allows_thumbnails"`
	AllowsOriginalSize bool   `gorm:"not null" json:"allows_original_size"`
	AllowsExpiringLink bool   `gorm:"not null" json:"allows_expiring_link"`

	ThumbnailSizes []ThumbnailSize `gorm:"constraint:OnDelete:CASCADE" json:"thumbnail_sizes,omitempty"`
}

// ThumbnailSize 单个 (tier, height) 尺寸策略，height 单位为像素
type ThumbnailSize struct {
	gorm.Model
	TierID uint `gorm:"uniqueIndex:idx_tier_height;not null" json:"tier_id"`
	Height int  `gorm:"uniqueIndex:idx_tier_height;not null" json:"height"`
}
