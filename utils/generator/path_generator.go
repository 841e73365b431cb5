package generator

import (
	"fmt"
	"time"
)

// PathGenerator 分层路径生成器
type PathGenerator struct{}

// NewPathGenerator 创建路径生成器
func NewPathGenerator() *PathGenerator {
	return &PathGenerator{}
}

// StorageIdentifiers 存储标识对
type StorageIdentifiers struct {
	Identifier  string // 业务标识符，如 a1b2c3d4e5f6（不含扩展名）
	StoragePath string // 存储路径，如 original/2024/01/15/a1b2c3d4e5f6.jpg
}

// GenerateOriginalIdentifiers 生成原图的 identifier 和 storage_path
func (pg *PathGenerator) GenerateOriginalIdentifiers(fileHash string, ext string, uploadTime time.Time) StorageIdentifiers {
	hash := fileHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	datePath := uploadTime.Format("2006/01/02")

	return StorageIdentifiers{
		Identifier:  hash,
		StoragePath: fmt.Sprintf("original/%s/%s%s", datePath, hash, ext),
	}
}

// GenerateThumbnailIdentifiers 生成缩略图的 identifier 和 storage_path
// 缩略图保持源格式扩展名，文件名带高度后缀，不会与原图重名
func (pg *PathGenerator) GenerateThumbnailIdentifiers(originalIdentifier string, ext string, height int, uploadTime time.Time) StorageIdentifiers {
	datePath := uploadTime.Format("2006/01/02")
	identifier := fmt.Sprintf("%s_%d", originalIdentifier, height)

	return StorageIdentifiers{
		Identifier:  identifier,
		StoragePath: fmt.Sprintf("thumbnails/%s/%s%s", datePath, identifier, ext),
	}
}
