package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphadmin-backend/internal/http/response"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

type ImageHandler struct {
	log      *logger.Logger
	images   services.ImageService
	maxBytes int64
}

func NewImageHandler(log *logger.Logger, images services.ImageService, maxBytes int64) *ImageHandler {
	if maxBytes <= 0 {
		maxBytes = services.DefaultMaxImageBytes
	}
	return &ImageHandler{
		log:      log.With("handler", "ImageHandler"),
		images:   images,
		maxBytes: maxBytes,
	}
}

// POST /api/images/upload
// multipart: image=<file>
func (h *ImageHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, fmt.Errorf("missing image field: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	url, err := h.images.Upload(c.Request.Context(), services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// DELETE /api/images
// body: { "url": "..." } or ?url=
func (h *ImageHandler) Delete(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		var req struct {
			URL string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		url = req.URL
	}
	if err := h.images.DeleteByURL(c.Request.Context(), url); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
