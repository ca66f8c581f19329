package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/http/response"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

type MetadataHandler struct {
	metadata services.MetadataService
}

func NewMetadataHandler(metadata services.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadata: metadata}
}

// GET /api/metadata/universes
func (h *MetadataHandler) ListUniverses(c *gin.Context) {
	names, err := h.metadata.ListUniverses(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, names)
}

// GET /api/metadata/universe-nodes
func (h *MetadataHandler) ListAllUniverseNodes(c *gin.Context) {
	items, err := h.metadata.ListAllUniverseNodes(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, items)
}

// GET /api/metadata/universe/:universe
func (h *MetadataHandler) ListByUniverse(c *gin.Context) {
	items, err := h.metadata.ListByUniverse(c.Request.Context(), c.Param("universe"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, items)
}

// DELETE /api/metadata/universe/:universe
func (h *MetadataHandler) DeleteUniverse(c *gin.Context) {
	n, err := h.metadata.DeleteUniverse(c.Request.Context(), c.Param("universe"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}

// GET /api/metadata/:id
func (h *MetadataHandler) Get(c *gin.Context) {
	item, err := h.metadata.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// PATCH /api/metadata/:id
// body: MetadataPatch
func (h *MetadataHandler) Update(c *gin.Context) {
	var req domain.MetadataPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.metadata.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, item)
}
