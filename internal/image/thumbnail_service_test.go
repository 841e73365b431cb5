package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	"image/png"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/tierbed/database/models"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	tiersrepo "github.com/anoixa/tierbed/database/repo/tiers"
	"github.com/anoixa/tierbed/internal/tiers"
	"github.com/anoixa/tierbed/storage"
	"github.com/anoixa/tierbed/utils/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	store     *storage.LocalStorage
	tiersRepo *tiersrepo.Repository
	imageRepo *imagesrepo.Repository
	thumbRepo *imagesrepo.ThumbnailRepository
	generator *Generator
	upload    *UploadService
	delete    *DeleteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tier{}, &models.ThumbnailSize{}, &models.User{},
		&models.Image{}, &models.Thumbnail{},
	))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tiersRepo := tiersrepo.NewRepository(db)
	imageRepo := imagesrepo.NewRepository(db)
	thumbRepo := imagesrepo.NewThumbnailRepository(db)
	pathGen := generator.NewPathGenerator()
	catalog := tiers.NewService(tiersRepo, nil, time.Minute)
	thumbnailGenerator := NewGenerator(thumbRepo, catalog, store, pathGen)

	return &testEnv{
		db:        db,
		store:     store,
		tiersRepo: tiersRepo,
		imageRepo: imageRepo,
		thumbRepo: thumbRepo,
		generator: thumbnailGenerator,
		upload:    NewUploadService(imageRepo, store, thumbnailGenerator, pathGen, 10),
		delete:    NewDeleteService(imageRepo, thumbRepo, store),
	}
}

// createTieredUser 建 tier（含高度）和关联用户
func (env *testEnv) createTieredUser(t *testing.T, tierName string, allowsThumbnails bool, heights ...int) *models.User {
	t.Helper()
	tier, err := env.tiersRepo.CreateTier(tierName, allowsThumbnails, true, false)
	require.NoError(t, err)
	for _, h := range heights {
		_, err := env.tiersRepo.AddThumbnailSize(tier.ID, h)
		require.NoError(t, err)
	}

	user := &models.User{Username: "user-" + tierName, Password: "x", TierID: &tier.ID, IsActive: true}
	require.NoError(t, env.db.Create(user).Error)
	user.Tier = tier
	return user
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func makeFileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestScaledWidth(t *testing.T) {
	tests := []struct {
		ow, oh, th int
		want       int
	}{
		{1000, 2000, 200, 100},
		{1000, 2000, 400, 200},
		{2000, 1000, 200, 400},
		{1000, 1000, 100, 100},
		{1005, 2000, 200, 101}, // 100.5 四舍五入
		{333, 1000, 100, 33},
		{1, 2000, 200, 1}, // 极端宽高比下不归零
		{1, 5000, 100, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d@%d", tt.ow, tt.oh, tt.th), func(t *testing.T) {
			assert.Equal(t, tt.want, ScaledWidth(tt.ow, tt.oh, tt.th))
		})
	}
}

func TestGenerateForImagePerTierHeights(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createTieredUser(t, "Basic", true, 200, 400)

	source := pngBytes(t, 500, 1000)
	require.NoError(t, env.store.SaveWithContext(ctx, "original/2024/01/15/abc123def456.png", bytes.NewReader(source)))
	img := &models.Image{
		Identifier:   "abc123def456",
		OriginalName: "photo.png",
		FileName:     "abc123def456.png",
		StoragePath:  "original/2024/01/15/abc123def456.png",
		FileSize:     int64(len(source)),
		MimeType:     "image/png",
		Width:        500,
		Height:       1000,
		UserID:       user.ID,
	}
	require.NoError(t, env.imageRepo.CreateImage(img))

	require.NoError(t, env.generator.GenerateForImage(ctx, user, img))

	thumbnails, err := env.thumbRepo.ListThumbnailsByImage(img.ID)
	require.NoError(t, err)
	require.Len(t, thumbnails, 2)

	// 高度来自尺寸策略，宽度等比缩放
	assert.Equal(t, 200, thumbnails[0].Height)
	assert.Equal(t, 100, thumbnails[0].Width)
	assert.Equal(t, 400, thumbnails[1].Height)
	assert.Equal(t, 200, thumbnails[1].Width)

	for _, thumb := range thumbnails {
		assert.Equal(t, user.ID, thumb.UserID)
		assert.NotZero(t, thumb.ThumbnailSizeID)
		exists, err := env.store.Exists(ctx, thumb.StoragePath)
		require.NoError(t, err)
		assert.True(t, exists, "thumbnail blob %s should exist", thumb.StoragePath)
	}
}

func TestGenerateForImageNoHeightsIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 层级禁用缩略图
	user := env.createTieredUser(t, "NoThumbs", false)
	img := &models.Image{Identifier: "noop1", OriginalName: "a.png", FileName: "a.png",
		StoragePath: "original/2024/01/15/a.png", FileSize: 1, MimeType: "image/png", UserID: user.ID}
	require.NoError(t, env.imageRepo.CreateImage(img))

	require.NoError(t, env.generator.GenerateForImage(ctx, user, img))

	count, err := env.thumbRepo.CountThumbnails()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGenerateForImagePrivilegedUnion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createTieredUser(t, "Basic", true, 200)
	env.createTieredUser(t, "Premium", true, 400)

	admin := &models.User{Username: "admin", Password: "x", IsActive: true, IsStaff: true, IsSuperuser: true}
	require.NoError(t, env.db.Create(admin).Error)

	source := pngBytes(t, 500, 1000)
	require.NoError(t, env.store.SaveWithContext(ctx, "original/2024/01/15/admin123.png", bytes.NewReader(source)))
	img := &models.Image{
		Identifier: "admin123", OriginalName: "a.png", FileName: "admin123.png",
		StoragePath: "original/2024/01/15/admin123.png", FileSize: int64(len(source)),
		MimeType: "image/png", Width: 500, Height: 1000, UserID: admin.ID,
	}
	require.NoError(t, env.imageRepo.CreateImage(img))

	require.NoError(t, env.generator.GenerateForImage(ctx, admin, img))

	// 特权用户得到所有层级高度的并集
	thumbnails, err := env.thumbRepo.ListThumbnailsByImage(img.ID)
	require.NoError(t, err)
	require.Len(t, thumbnails, 2)
	assert.Equal(t, 200, thumbnails[0].Height)
	assert.Equal(t, 400, thumbnails[1].Height)
}
