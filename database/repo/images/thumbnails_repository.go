package images

import (
	"errors"

	"github.com/anoixa/tierbed/database/models"
	"github.com/anoixa/tierbed/internal/apperrors"
	"gorm.io/gorm"
)

// ThumbnailRepository 缩略图仓库
type ThumbnailRepository struct {
	db *gorm.DB
}

// NewThumbnailRepository 创建新的缩略图仓库
func NewThumbnailRepository(db *gorm.DB) *ThumbnailRepository {
	return &ThumbnailRepository{db: db}
}

// CreateThumbnail 保存缩略图记录
func (r *ThumbnailRepository) CreateThumbnail(thumbnail *models.Thumbnail) error {
	return r.db.Create(thumbnail).Error
}

// GetThumbnailByIdentifierAndUser 获取用户名下指定标识符的缩略图
func (r *ThumbnailRepository) GetThumbnailByIdentifierAndUser(identifier string, userID uint) (*models.Thumbnail, error) {
	var thumbnail models.Thumbnail
	err := r.db.Where("identifier = ? AND user_id = ?", identifier, userID).First(&thumbnail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("thumbnail %q", identifier)
		}
		return nil, err
	}
	return &thumbnail, nil
}

// ListThumbnailsByUser 获取用户缩略图列表
func (r *ThumbnailRepository) ListThumbnailsByUser(userID uint, page, pageSize int) ([]*models.Thumbnail, int64, error) {
	var thumbnails []*models.Thumbnail
	var total int64

	db := r.db.Model(&models.Thumbnail{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&thumbnails).Error
	return thumbnails, total, err
}

// ListThumbnailsByImage 获取图片的全部缩略图
func (r *ThumbnailRepository) ListThumbnailsByImage(imageID uint) ([]*models.Thumbnail, error) {
	var thumbnails []*models.Thumbnail
	err := r.db.Where("image_id = ?", imageID).Order("height asc").Find(&thumbnails).Error
	return thumbnails, err
}

// DeleteThumbnail 删除缩略图记录，返回提交后需移除的文件路径
// 硬删除，释放标识符唯一索引
func (r *ThumbnailRepository) DeleteThumbnail(thumbnail *models.Thumbnail) (string, error) {
	if err := r.db.Unscoped().Delete(thumbnail).Error; err != nil {
		return "", err
	}
	return thumbnail.StoragePath, nil
}

// CountThumbnails 统计全部缩略图行数
func (r *ThumbnailRepository) CountThumbnails() (int64, error) {
	var count int64
	err := r.db.Model(&models.Thumbnail{}).Count(&count).Error
	return count, err
}
