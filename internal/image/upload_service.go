package image

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	stdimage "image"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoixa/tierbed/database/models"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	"github.com/anoixa/tierbed/internal/apperrors"
	"github.com/anoixa/tierbed/storage"
	"github.com/anoixa/tierbed/utils/generator"
	"github.com/anoixa/tierbed/utils/validator"
	"github.com/google/uuid"
)

// UploadService 图片上传编排器
// 负责校验、存储、落库，然后显式触发缩略图生成（落库后的固定步骤，
// 不是隐藏的持久化钩子）
type UploadService struct {
	imagesRepo   *imagesrepo.Repository
	storage      storage.Provider
	generator    *Generator
	pathGen      *generator.PathGenerator
	maxSizeBytes int64
}

// NewUploadService 创建上传编排器
func NewUploadService(
	imagesRepo *imagesrepo.Repository,
	storageProvider storage.Provider,
	thumbnailGenerator *Generator,
	pathGen *generator.PathGenerator,
	maxSizeMB int,
) *UploadService {
	return &UploadService{
		imagesRepo:   imagesRepo,
		storage:      storageProvider,
		generator:    thumbnailGenerator,
		pathGen:      pathGen,
		maxSizeBytes: int64(maxSizeMB) << 20,
	}
}

// Upload 处理单图片上传
// 缩略图生成失败不影响已提交的图片，只写日志
func (s *UploadService) Upload(ctx context.Context, owner *models.User, fileHeader *multipart.FileHeader) (*models.Image, error) {
	if fileHeader.Size > s.maxSizeBytes {
		return nil, apperrors.Validationf("file exceeds maximum size of %d bytes", s.maxSizeBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, apperrors.Validationf("file exceeds maximum size of %d bytes", s.maxSizeBytes)
	}

	ok, err := validator.IsImage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to sniff file type: %w", err)
	}
	if !ok {
		return nil, apperrors.Validationf("file is not a supported image type")
	}

	mimeType, err := validator.SniffContentType(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to sniff content type: %w", err)
	}

	cfg, _, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Validationf("file is not a decodable image")
	}

	hasher := sha256.New()
	hasher.Write(data)
	fileHash := hex.EncodeToString(hasher.Sum(nil))

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = extForMime(mimeType)
	}

	ids := s.pathGen.GenerateOriginalIdentifiers(fileHash, ext, time.Now())

	// 同内容重复上传时用随机后缀保证标识符唯一
	exists, err := s.imagesRepo.IdentifierExists(ids.Identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to check identifier: %w", err)
	}
	if exists {
		alt := strings.ReplaceAll(uuid.New().String(), "-", "")
		ids = s.pathGen.GenerateOriginalIdentifiers(alt, ext, time.Now())
	}

	if err := s.storage.SaveWithContext(ctx, ids.StoragePath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img := &models.Image{
		Identifier:   ids.Identifier,
		OriginalName: fileHeader.Filename,
		FileName:     filepath.Base(ids.StoragePath),
		StoragePath:  ids.StoragePath,
		FileSize:     int64(len(data)),
		MimeType:     mimeType,
		Width:        cfg.Width,
		Height:       cfg.Height,
		UserID:       owner.ID,
	}
	if err := s.imagesRepo.CreateImage(img); err != nil {
		// 落库失败时回收已写入的文件
		if removeErr := s.storage.DeleteWithContext(ctx, ids.StoragePath); removeErr != nil {
			log.Printf("[Upload] Failed to clean up blob %s: %v", ids.StoragePath, removeErr)
		}
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}

	// 记录已提交，此后的缩略图失败属于运维问题，不作为请求错误
	if err := s.generator.GenerateForImage(ctx, owner, img); err != nil {
		log.Printf("[Upload] Thumbnail generation failed for %s: %v", img.Identifier, err)
	}

	return img, nil
}

// extForMime 当上传文件名没有扩展名时从 MIME 推断
func extForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	default:
		return ""
	}
}
