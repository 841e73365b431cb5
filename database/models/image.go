package models

import "gorm.io/gorm"

type Image struct {
	gorm.Model
	Identifier   string `gorm:"uniqueIndex:idx_image_identifier;size:64;not null" json:"identifier"`
	OriginalName string `gorm:"not null" json:"original_name"`
	FileName     string `gorm:"not null" json:"file_name"`
	StoragePath  string `gorm:"size:255;not null" json:"storage_path"`
	FileSize     int64  `gorm:"not null" json:"file_size"`
	MimeType     string `gorm:"not null" json:"mime_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`

	UserID uint `gorm:"index:idx_image_user;not null" json:"user_id"`
	User   User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Thumbnails []Thumbnail `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Thumbnail 上传的派生产物，只在 Image 创建时生成，不能由用户直接创建
type Thumbnail struct {
	gorm.Model
	Identifier  string `gorm:"uniqueIndex:idx_thumbnail_identifier;size:64;not null" json:"identifier"`
	StoragePath string `gorm:"size:255;not null" json:"storage_path"`
	FileSize    int64  `gorm:"not null" json:"file_size"`
	Width       int    `json:"width"`
	Height      int    `gorm:"not null" json:"height"`

	UserID uint `gorm:"index:idx_thumbnail_user;not null" json:"user_id"`
	User   User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	ImageID uint  `gorm:"index:idx_thumbnail_image;not null" json:"image_id"`
	Image   Image `json:"-"`

	// 信息性字段：生成时使用的尺寸策略
	ThumbnailSizeID uint `json:"thumbnail_size_id"`
}
