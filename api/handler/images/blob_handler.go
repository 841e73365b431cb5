package images

import (
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/anoixa/tierbed/api/common"
	"github.com/gin-gonic/gin"
)

// ServeOriginal 提供原图文件
// GET /images/*blobpath → 存储路径 original/<blobpath>
func (h *Handler) ServeOriginal(c *gin.Context) {
	h.serveBlob(c, "original"+c.Param("blobpath"))
}

// ServeThumbnail 提供缩略图文件
// GET /thumbnails/*blobpath → 存储路径 thumbnails/<blobpath>
func (h *Handler) ServeThumbnail(c *gin.Context) {
	h.serveBlob(c, "thumbnails"+c.Param("blobpath"))
}

func (h *Handler) serveBlob(c *gin.Context, storagePath string) {
	if strings.Contains(storagePath, "..") {
		common.RespondError(c, http.StatusBadRequest, "Invalid path")
		return
	}

	reader, err := h.storage.GetWithContext(c.Request.Context(), storagePath)
	if err != nil {
		log.Printf("[Blob] Failed to get %s: %v", storagePath, err)
		common.RespondError(c, http.StatusNotFound, "File not found")
		return
	}
	defer func() {
		if closer, ok := reader.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	contentType := mime.TypeByExtension(filepath.Ext(storagePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=2592000, immutable")

	http.ServeContent(c.Writer, c.Request, filepath.Base(storagePath), time.Time{}, reader)
}
