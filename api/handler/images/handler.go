package images

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anoixa/tierbed/database/models"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	imageSvc "github.com/anoixa/tierbed/internal/image"
	"github.com/anoixa/tierbed/internal/link"
	"github.com/anoixa/tierbed/internal/policy"
	"github.com/anoixa/tierbed/storage"
	"github.com/gin-gonic/gin"
)

// Handler 图片处理器
type Handler struct {
	repo          *imagesrepo.Repository
	uploadService *imageSvc.UploadService
	deleteService *imageSvc.DeleteService
	codec         *link.Codec
	storage       storage.Provider
	baseURL       string
}

// NewHandler 创建图片处理器
func NewHandler(
	repo *imagesrepo.Repository,
	uploadService *imageSvc.UploadService,
	deleteService *imageSvc.DeleteService,
	codec *link.Codec,
	storageProvider storage.Provider,
	baseURL string,
) *Handler {
	return &Handler{
		repo:          repo,
		uploadService: uploadService,
		deleteService: deleteService,
		codec:         codec,
		storage:       storageProvider,
		baseURL:       baseURL,
	}
}

// imageView 响应视图
// 文件引用按查看者的 tier 能力降级：无 original_size 能力时只给文件名，
// 不暴露可访问的 URL 和元数据
type imageView struct {
	Identifier string    `json:"identifier"`
	FileName   string    `json:"file_name"`
	CreatedAt  time.Time `json:"created_at"`

	File     string `json:"file,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

func (h *Handler) shapeImage(subject policy.Subject, img *models.Image) imageView {
	view := imageView{
		Identifier: img.Identifier,
		FileName:   img.FileName,
		CreatedAt:  img.CreatedAt,
	}
	if subject.CanViewOriginal() {
		view.File = h.blobURL(img.StoragePath)
		view.FileSize = img.FileSize
		view.MimeType = img.MimeType
		view.Width = img.Width
		view.Height = img.Height
	}
	return view
}

// blobURL 把存储路径转成公开访问 URL
// original/<date>/<file> 暴露为 /images/<date>/<file>，缩略图路径原样暴露
func (h *Handler) blobURL(storagePath string) string {
	if strings.HasPrefix(storagePath, "original/") {
		return fmt.Sprintf("%s/images/%s", h.baseURL, strings.TrimPrefix(storagePath, "original/"))
	}
	return fmt.Sprintf("%s/%s", h.baseURL, storagePath)
}

// parsePagination 解析分页参数，页码从 1 开始，页大小上限 100
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
