package images

import (
	"errors"
	"fmt"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/internal/apperrors"
	"gorm.io/gorm"
)

// Repository 图片仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的图片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateImage 保存图片记录
func (r *Repository) CreateImage(image *models.Image) error {
	return r.db.Create(image).Error
}

// GetImageByIdentifierAndUser 获取用户名下指定标识符的图片
func (r *Repository) GetImageByIdentifierAndUser(identifier string, userID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Where("identifier = ? AND user_id = ?", identifier, userID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("image %q", identifier)
		}
		return nil, err
	}
	return &image, nil
}

// IdentifierExists 检查标识符是否已被占用
func (r *Repository) IdentifierExists(identifier string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Where("identifier = ?", identifier).Count(&count).Error
	return count > 0, err
}

// ListImagesByUser 获取用户图片列表
func (r *Repository) ListImagesByUser(userID uint, page, pageSize int) ([]*models.Image, int64, error) {
	var images []*models.Image
	var total int64

	db := r.db.Model(&models.Image{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&images).Error
	return images, total, err
}

// CountImages 统计图片总数
func (r *Repository) CountImages() (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Count(&count).Error
	return count, err
}

// TotalFileSize 统计原图占用的存储字节数
func (r *Repository) TotalFileSize() (int64, error) {
	var total int64
	err := r.db.Model(&models.Image{}).Select("COALESCE(SUM(file_size), 0)").Scan(&total).Error
	return total, err
}

// DeleteImageCascade 删除图片记录并级联删除其缩略图记录
// 硬删除，软删除的行会继续占用标识符唯一索引，导致同内容当天重传失败
// 返回提交成功后需要从存储移除的文件路径，文件删除必须在事务提交后执行
func (r *Repository) DeleteImageCascade(image *models.Image) ([]string, error) {
	var paths []string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var thumbnails []*models.Thumbnail
		if err := tx.Where("image_id = ?", image.ID).Find(&thumbnails).Error; err != nil {
			return fmt.Errorf("failed to list thumbnails for image %d: %w", image.ID, err)
		}

		for _, thumb := range thumbnails {
			paths = append(paths, thumb.StoragePath)
		}
		paths = append(paths, image.StoragePath)

		if err := tx.Unscoped().Where("image_id = ?", image.ID).Delete(&models.Thumbnail{}).Error; err != nil {
			return fmt.Errorf("failed to delete thumbnails for image %d: %w", image.ID, err)
		}
		if err := tx.Unscoped().Delete(image).Error; err != nil {
			return fmt.Errorf("failed to delete image %d: %w", image.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
