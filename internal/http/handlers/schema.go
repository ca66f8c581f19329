package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/http/response"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

type SchemaHandler struct {
	log    *logger.Logger
	schema services.SchemaService
}

func NewSchemaHandler(log *logger.Logger, schema services.SchemaService) *SchemaHandler {
	return &SchemaHandler{
		log:    log.With("handler", "SchemaHandler"),
		schema: schema,
	}
}

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation), err)
}

// GET /api/schema
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	schema, err := h.schema.GetSchema(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, schema)
}

// PUT /api/schema
// body: GraphSchema
func (h *SchemaHandler) PutSchema(c *gin.Context) {
	var req domain.GraphSchema
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.schema.SaveSchema(c.Request.Context(), req); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, req)
}

// GET /api/schema/node-types/:nodeType
// An unknown node type answers 200 with null.
func (h *SchemaHandler) GetNodeSchema(c *gin.Context) {
	ns, err := h.schema.GetNodeSchema(c.Request.Context(), c.Param("nodeType"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, ns)
}

// POST /api/schema/node-types
// body: { "nodeType": "scene" }
func (h *SchemaHandler) AddNodeType(c *gin.Context) {
	var req struct {
		NodeType string `json:"nodeType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	schema, err := h.schema.AddNodeType(c.Request.Context(), req.NodeType)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schema)
}

// DELETE /api/schema/node-types/:nodeType
func (h *SchemaHandler) DeleteNodeType(c *gin.Context) {
	schema, err := h.schema.DeleteNodeType(c.Request.Context(), c.Param("nodeType"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, schema)
}

// POST /api/schema/node-types/:nodeType/properties
// body: PropertyDefinition
func (h *SchemaHandler) AddProperty(c *gin.Context) {
	var req domain.PropertyDefinition
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	schema, err := h.schema.AddProperty(c.Request.Context(), c.Param("nodeType"), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schema)
}

// PATCH /api/schema/node-types/:nodeType/properties/:name
// body: PropertyPatch
func (h *SchemaHandler) UpdateProperty(c *gin.Context) {
	var req domain.PropertyPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	schema, err := h.schema.UpdateProperty(c.Request.Context(), c.Param("nodeType"), c.Param("name"), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, schema)
}

// DELETE /api/schema/node-types/:nodeType/properties/:name
func (h *SchemaHandler) DeleteProperty(c *gin.Context) {
	schema, err := h.schema.DeleteProperty(c.Request.Context(), c.Param("nodeType"), c.Param("name"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, schema)
}

// GET /api/schema/logs?limit=50
func (h *SchemaHandler) GetChangeLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, domain.ValidationError("SchemaHandler.GetChangeLogs", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	entries, err := h.schema.GetChangeLogs(c.Request.Context(), limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, entries)
}

// POST /api/schema/logs
// body: { "nodeType": "...", "action": "add|update|delete|save", "propertyName": "...", "description": "..." }
func (h *SchemaHandler) AppendChangeLog(c *gin.Context) {
	var req domain.ChangeLogInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.schema.AppendChangeLog(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
