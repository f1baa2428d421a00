package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/docsearch/internal/document/application"
	"github.com/davicafu/docsearch/internal/document/domain"
	"github.com/davicafu/docsearch/pkg/utils"
)

// DocumentHandler encapsula los endpoints HTTP relacionados con Document
type DocumentHandler struct {
	service *application.DocumentService
	debug   bool
}

// NewDocumentHandler: debug expone el detalle de los errores 500.
func NewDocumentHandler(service *application.DocumentService, debug bool) *DocumentHandler {
	return &DocumentHandler{service: service, debug: debug}
}

type documentRequest struct {
	Title string `json:"title" binding:"required,max=500"`
	Body  string `json:"body"`
}

// ---------------- Handlers ----------------

// CreateDocument endpoint POST /documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}

	doc, err := h.service.CreateDocument(c.Request.Context(), req.Title, req.Body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// UpdateDocument endpoint PUT /documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}

	doc, err := h.service.UpdateDocument(c.Request.Context(), id, req.Title, req.Body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetDocument endpoint GET /documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ListDocuments endpoint GET /documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	limit := domain.DefaultListLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= domain.DefaultListLimit {
		limit = v
	}

	docs, err := h.service.ListDocuments(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid document id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *DocumentHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDocument):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrDocumentNotFound):
		utils.SendNotFound(c, "document not found")
	default:
		_ = c.Error(err)
		utils.SendInternalServerError(c, err, h.debug)
	}
}
