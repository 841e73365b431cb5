package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/anoixa/tierbed/config"
	"github.com/studio-b12/gowebdav"
)

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg *config.Config) (*WebDAVStorage, error) {
	if cfg.WebdavURL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.WebdavRoot, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.WebdavURL, cfg.WebdavUsername, cfg.WebdavPassword)

	// 验证连接
	if _, err := client.ReadDir("/"); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
	}, nil
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(identifier string) string {
	return s.rootPath + "/" + strings.TrimLeft(identifier, "/")
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	target := s.fullPath(identifier)
	if err := s.client.MkdirAll(path.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create webdav directory for '%s': %w", identifier, err)
	}

	if err := s.client.WriteStream(target, file, 0644); err != nil {
		return fmt.Errorf("failed to write webdav file '%s': %w", identifier, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 获取文件
// WebDAV 流不可 seek，读入内存后返回
func (s *WebDAVStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error) {
	if !IsValidIdentifier(identifier) {
		return nil, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	data, err := s.client.Read(s.fullPath(identifier))
	if err != nil {
		return nil, fmt.Errorf("failed to read webdav file '%s': %w", identifier, err)
	}
	return bytes.NewReader(data), nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	if err := s.client.Remove(s.fullPath(identifier)); err != nil {
		return fmt.Errorf("failed to delete webdav file '%s': %w", identifier, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	if !IsValidIdentifier(identifier) {
		return false, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	if _, err := s.client.Stat(s.fullPath(identifier)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, nil
	}
	return true, nil
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	_, err := s.client.ReadDir("/")
	return err
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
