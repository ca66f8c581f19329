package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/http/response"
	"github.com/yungbote/graphadmin-backend/internal/modules/graphupload"
	"github.com/yungbote/graphadmin-backend/internal/observability"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
	"github.com/yungbote/graphadmin-backend/internal/services"
)

// DefaultMaxGraphFileBytes caps a parsed graph document.
const DefaultMaxGraphFileBytes int64 = 32 << 20

type GraphHandler struct {
	log      *logger.Logger
	mapping  services.MappingService
	upload   services.UploadService
	metrics  *observability.Metrics
	maxBytes int64
}

func NewGraphHandler(log *logger.Logger, mapping services.MappingService, upload services.UploadService, metrics *observability.Metrics, maxBytes int64) *GraphHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxGraphFileBytes
	}
	return &GraphHandler{
		log:      log.With("handler", "GraphHandler"),
		mapping:  mapping,
		upload:   upload,
		metrics:  metrics,
		maxBytes: maxBytes,
	}
}

type parseResponse struct {
	Data             *domain.UploadedGraphData `json:"data"`
	SampleProperties []string                  `json:"sampleProperties"`
	Suggestions      []domain.PropertyMapping  `json:"suggestions,omitempty"`
}

// POST /api/graph/parse
// multipart: file=<graph.json>, nodeType=<optional>
func (h *GraphHandler) Parse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, fmt.Errorf("graph file exceeds %d bytes", h.maxBytes))
			return
		}
		badRequest(c, fmt.Errorf("missing file field: %w", err))
		return
	}
	if fh.Size > h.maxBytes {
		badRequest(c, fmt.Errorf("graph file exceeds %d bytes", h.maxBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	data, err := graphupload.ParseGraphFile(f)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	out := parseResponse{Data: data, SampleProperties: graphupload.SampleProperties(data)}
	if nodeType := strings.TrimSpace(c.PostForm("nodeType")); nodeType != "" {
		suggestions, err := h.mapping.SuggestMappings(c.Request.Context(), out.SampleProperties, nodeType)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		out.Suggestions = suggestions
	}
	response.RespondOK(c, out)
}

// POST /api/graph/mappings/suggest
// body: { "sourceProperties": ["Name", ...], "nodeType": "universe" }
func (h *GraphHandler) Suggest(c *gin.Context) {
	var req struct {
		SourceProperties []string `json:"sourceProperties"`
		NodeType         string   `json:"nodeType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mappings, err := h.mapping.SuggestMappings(c.Request.Context(), req.SourceProperties, req.NodeType)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, mappings)
}

type uploadRequest struct {
	Data     *domain.UploadedGraphData `json:"data"`
	Mappings []domain.PropertyMapping  `json:"mappings"`
}

func (h *GraphHandler) bindUpload(c *gin.Context) (uploadRequest, bool) {
	var req uploadRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return req, false
	}
	return req, true
}

// POST /api/graph/upload/preview
// body: { "data": UploadedGraphData, "mappings": [PropertyMapping] }
func (h *GraphHandler) Preview(c *gin.Context) {
	req, ok := h.bindUpload(c)
	if !ok {
		return
	}
	preview, err := h.upload.PreviewMappings(c.Request.Context(), req.Data, req.Mappings)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, preview)
}

// POST /api/graph/upload
// body: { "data": UploadedGraphData, "mappings": [PropertyMapping] }
func (h *GraphHandler) Upload(c *gin.Context) {
	req, ok := h.bindUpload(c)
	if !ok {
		return
	}
	nodeType := ""
	if len(req.Mappings) > 0 {
		nodeType = strings.TrimSpace(req.Mappings[0].NodeType)
	}
	report, err := h.upload.ApplyMappings(c.Request.Context(), req.Data, req.Mappings)
	h.metrics.ObserveUpload(nodeType, report, err)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, report)
}
