package image

import (
	"context"
	"testing"

	"github.com/anoixa/tierbed/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteImageCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createTieredUser(t, "Basic", true, 200, 400)

	img, err := env.upload.Upload(ctx, user, makeFileHeader(t, "photo.png", pngBytes(t, 500, 1000)))
	require.NoError(t, err)

	thumbnails, err := env.thumbRepo.ListThumbnailsByImage(img.ID)
	require.NoError(t, err)
	require.Len(t, thumbnails, 2)

	require.NoError(t, env.delete.DeleteImage(ctx, img))

	// 记录级联删除
	_, err = env.imageRepo.GetImageByIdentifierAndUser(img.Identifier, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	remaining, err := env.thumbRepo.ListThumbnailsByImage(img.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// 文件在提交后移除
	exists, err := env.store.Exists(ctx, img.StoragePath)
	require.NoError(t, err)
	assert.False(t, exists)
	for _, thumb := range thumbnails {
		exists, err := env.store.Exists(ctx, thumb.StoragePath)
		require.NoError(t, err)
		assert.False(t, exists, "thumbnail blob %s should be removed", thumb.StoragePath)
	}
}

func TestReuploadAfterDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createTieredUser(t, "Basic", true, 200)
	source := pngBytes(t, 500, 1000)

	img, err := env.upload.Upload(ctx, user, makeFileHeader(t, "photo.png", source))
	require.NoError(t, err)
	require.NoError(t, env.delete.DeleteImage(ctx, img))

	// 删除后行不再占用唯一索引，同内容当天重传复用同一标识符
	again, err := env.upload.Upload(ctx, user, makeFileHeader(t, "photo.png", source))
	require.NoError(t, err)
	assert.Equal(t, img.Identifier, again.Identifier)

	count, err := env.imageRepo.CountImages()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDeleteSingleThumbnail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createTieredUser(t, "Basic", true, 200, 400)

	img, err := env.upload.Upload(ctx, user, makeFileHeader(t, "photo.png", pngBytes(t, 500, 1000)))
	require.NoError(t, err)

	thumbnails, err := env.thumbRepo.ListThumbnailsByImage(img.ID)
	require.NoError(t, err)
	require.Len(t, thumbnails, 2)

	require.NoError(t, env.delete.DeleteThumbnail(ctx, thumbnails[0]))

	remaining, err := env.thumbRepo.ListThumbnailsByImage(img.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, thumbnails[1].Identifier, remaining[0].Identifier)

	// 原图不受影响
	exists, err := env.store.Exists(ctx, img.StoragePath)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = env.store.Exists(ctx, thumbnails[0].StoragePath)
	require.NoError(t, err)
	assert.False(t, exists)
}
