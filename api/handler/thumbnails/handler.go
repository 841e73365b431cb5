package thumbnails

import (
	"fmt"
	"net/http"
	"time"

	"github.com/anoixa/tierbed/api/common"
	"github.com/anoixa/tierbed/api/middleware"
	"github.com/anoixa/tierbed/database/models"
	imagesrepo "github.com/anoixa/tierbed/database/repo/images"
	imageSvc "github.com/anoixa/tierbed/internal/image"
	"github.com/anoixa/tierbed/internal/policy"
	"github.com/gin-gonic/gin"
)

// Handler 缩略图处理器
// 所有操作先做 tier 能力检查再查资源：无缩略图能力的调用方拿到 403，
// 即使资源不存在
type Handler struct {
	thumbRepo     *imagesrepo.ThumbnailRepository
	deleteService *imageSvc.DeleteService
	baseURL       string
}

// NewHandler 创建缩略图处理器
func NewHandler(thumbRepo *imagesrepo.ThumbnailRepository, deleteService *imageSvc.DeleteService, baseURL string) *Handler {
	return &Handler{
		thumbRepo:     thumbRepo,
		deleteService: deleteService,
		baseURL:       baseURL,
	}
}

type thumbnailView struct {
	Identifier string    `json:"identifier"`
	File       string    `json:"file"`
	FileSize   int64     `json:"file_size"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	ImageID    uint      `json:"image_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) shapeThumbnail(t *models.Thumbnail) thumbnailView {
	return thumbnailView{
		Identifier: t.Identifier,
		File:       fmt.Sprintf("%s/%s", h.baseURL, t.StoragePath),
		FileSize:   t.FileSize,
		Width:      t.Width,
		Height:     t.Height,
		ImageID:    t.ImageID,
		CreatedAt:  t.CreatedAt,
	}
}

// requireViewer 认证 + 缩略图能力检查
func requireViewer(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	if !policy.SubjectFromUser(user).CanViewThumbnails() {
		common.RespondError(c, http.StatusForbidden, "Tier does not allow thumbnails")
		return nil, false
	}
	return user, true
}
