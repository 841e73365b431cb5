package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/anoixa/tierbed/database/models"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	"github.com/anoixa/tierbed/internal/tiers"
	"github.com/anoixa/tierbed/storage"
	"github.com/anoixa/tierbed/utils/generator"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Generator 缩略图生成器
// 上传编排器在 Image 记录落库后调用一次，更新和重复保存不触发
type Generator struct {
	thumbRepo *imagesrepo.ThumbnailRepository
	catalog   *tiers.Service
	storage   storage.Provider
	pathGen   *generator.PathGenerator
}

// NewGenerator 创建缩略图生成器
func NewGenerator(
	thumbRepo *imagesrepo.ThumbnailRepository,
	catalog *tiers.Service,
	storageProvider storage.Provider,
	pathGen *generator.PathGenerator,
) *Generator {
	return &Generator{
		thumbRepo: thumbRepo,
		catalog:   catalog,
		storage:   storageProvider,
		pathGen:   pathGen,
	}
}

// GenerateForImage 为新上传的图片生成全部缩略图
// 源图只读一次，各高度并发生成，任意一个失败会取消其余生成并返回错误；
// 调用方记录日志即可，图片本身已提交不回滚
func (g *Generator) GenerateForImage(ctx context.Context, owner *models.User, img *models.Image) error {
	heights, err := g.catalog.HeightsForUpload(ctx, owner)
	if err != nil {
		return err
	}
	if len(heights) == 0 {
		return nil
	}

	reader, err := g.storage.GetWithContext(ctx, img.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to get source image %q: %w", img.Identifier, err)
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	src, format, err := stdimage.Decode(reader)
	if err != nil {
		// 上传校验已拒绝非图片，这里只剩存储损坏一类的硬错误
		return fmt.Errorf("failed to decode source image %q: %w", img.Identifier, err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, height := range heights {
		height := height
		eg.Go(func() error {
			return g.generateOne(ctx, owner, img, src, format, height)
		})
	}
	return eg.Wait()
}

// generateOne 生成单个高度的缩略图并落库
func (g *Generator) generateOne(ctx context.Context, owner *models.User, img *models.Image, src stdimage.Image, format string, targetHeight int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bounds := src.Bounds()
	width := ScaledWidth(bounds.Dx(), bounds.Dy(), targetHeight)

	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, width, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Rect, src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := encodeAs(&buf, dst, format); err != nil {
		return fmt.Errorf("failed to encode %dpx thumbnail for %q: %w", targetHeight, img.Identifier, err)
	}

	ext := strings.ToLower(filepath.Ext(img.StoragePath))
	ids := g.pathGen.GenerateThumbnailIdentifiers(img.Identifier, ext, targetHeight, img.CreatedAt)

	if err := g.storage.SaveWithContext(ctx, ids.StoragePath, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to store %dpx thumbnail for %q: %w", targetHeight, img.Identifier, err)
	}

	size, err := g.catalog.SizeForOwner(owner, targetHeight)
	if err != nil {
		return fmt.Errorf("failed to resolve size policy for %dpx: %w", targetHeight, err)
	}

	thumbnail := &models.Thumbnail{
		Identifier:      ids.Identifier,
		StoragePath:     ids.StoragePath,
		FileSize:        int64(buf.Len()),
		Width:           width,
		Height:          targetHeight,
		UserID:          owner.ID,
		ImageID:         img.ID,
		ThumbnailSizeID: size.ID,
	}
	if err := g.thumbRepo.CreateThumbnail(thumbnail); err != nil {
		return fmt.Errorf("failed to save %dpx thumbnail record for %q: %w", targetHeight, img.Identifier, err)
	}
	return nil
}

// ScaledWidth 按高度等比缩放后的宽度: round(ow / (oh / targetHeight))
// 极端宽高比下不小于 1，宽度为 0 的图像无法编码
func ScaledWidth(originalWidth, originalHeight, targetHeight int) int {
	ratio := float64(originalHeight) / float64(targetHeight)
	width := int(math.Round(float64(originalWidth) / ratio))
	if width < 1 {
		return 1
	}
	return width
}

// encodeAs 按源格式重编码
func encodeAs(w io.Writer, img stdimage.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}
