package image

import (
	"context"
	"log"

	"github.com/anoixa/tierbed/database/models"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	"github.com/anoixa/tierbed/storage"
)

// DeleteService 删除编排器
// 先删记录再删文件：文件删除必须发生在事务提交之后，避免留下指向
// 已删除文件的记录
type DeleteService struct {
	imagesRepo *imagesrepo.Repository
	thumbRepo  *imagesrepo.ThumbnailRepository
	storage    storage.Provider
}

// NewDeleteService 创建删除编排器
func NewDeleteService(
	imagesRepo *imagesrepo.Repository,
	thumbRepo *imagesrepo.ThumbnailRepository,
	storageProvider storage.Provider,
) *DeleteService {
	return &DeleteService{
		imagesRepo: imagesRepo,
		thumbRepo:  thumbRepo,
		storage:    storageProvider,
	}
}

// DeleteImage 删除图片及其全部缩略图
func (s *DeleteService) DeleteImage(ctx context.Context, img *models.Image) error {
	paths, err := s.imagesRepo.DeleteImageCascade(img)
	if err != nil {
		return err
	}

	s.removeBlobs(ctx, paths)
	return nil
}

// DeleteThumbnail 删除单个缩略图
func (s *DeleteService) DeleteThumbnail(ctx context.Context, thumbnail *models.Thumbnail) error {
	path, err := s.thumbRepo.DeleteThumbnail(thumbnail)
	if err != nil {
		return err
	}

	s.removeBlobs(ctx, []string{path})
	return nil
}

func (s *DeleteService) removeBlobs(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.storage.DeleteWithContext(ctx, path); err != nil {
			log.Printf("[Delete] Failed to remove blob %s: %v", path, err)
		}
	}
}
