package image

import (
	"context"
	"testing"

	"github.com/anoixa/tierbed/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	user := env.createTieredUser(t, "Basic", true, 200)

	fileHeader := makeFileHeader(t, "notes.txt", []byte("plain text, definitely not an image"))
	_, err := env.upload.Upload(context.Background(), user, fileHeader)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	count, err := env.imageRepo.CountImages()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUploadCreatesImageAndThumbnails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createTieredUser(t, "Basic", true, 200, 400)

	fileHeader := makeFileHeader(t, "photo.png", pngBytes(t, 500, 1000))
	img, err := env.upload.Upload(ctx, user, fileHeader)
	require.NoError(t, err)

	assert.Equal(t, "photo.png", img.OriginalName)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, 500, img.Width)
	assert.Equal(t, 1000, img.Height)
	assert.Len(t, img.Identifier, 12)

	exists, err := env.store.Exists(ctx, img.StoragePath)
	require.NoError(t, err)
	assert.True(t, exists)

	// 上传触发一次缩略图生成
	thumbnails, err := env.thumbRepo.ListThumbnailsByImage(img.ID)
	require.NoError(t, err)
	assert.Len(t, thumbnails, 2)
}

func TestUploadDuplicateContentGetsFreshIdentifier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createTieredUser(t, "Basic", true)

	data := pngBytes(t, 10, 10)
	first, err := env.upload.Upload(ctx, user, makeFileHeader(t, "a.png", data))
	require.NoError(t, err)
	second, err := env.upload.Upload(ctx, user, makeFileHeader(t, "b.png", data))
	require.NoError(t, err)

	assert.NotEqual(t, first.Identifier, second.Identifier)
	assert.NotEqual(t, first.StoragePath, second.StoragePath)
}

func TestUploadRespectsSizeLimit(t *testing.T) {
	env := newTestEnv(t)
	user := env.createTieredUser(t, "Basic", true)

	// 限制 10MB，塞一个声称超限的文件
	big := make([]byte, 11<<20)
	fileHeader := makeFileHeader(t, "big.bin", big)
	_, err := env.upload.Upload(context.Background(), user, fileHeader)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
