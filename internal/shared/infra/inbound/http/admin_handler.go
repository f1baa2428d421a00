package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/docsearch/internal/shared/infra/relayer"
	sharedUtils "github.com/davicafu/docsearch/internal/shared/infra/utils"
	"github.com/davicafu/docsearch/pkg/utils"
)

const maxManualBatch = 1000

// BatchPublisher es lo que el endpoint admin necesita del publisher.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, limit int) (relayer.PublishResult, error)
}

type AdminHandler struct {
	publisher    BatchPublisher
	defaultLimit int
	debug        bool
}

func NewAdminHandler(publisher BatchPublisher, defaultLimit int, debug bool) *AdminHandler {
	return &AdminHandler{publisher: publisher, defaultLimit: defaultLimit, debug: debug}
}

// PublishOutbox endpoint POST /admin/outbox/publish?limit=
// Dispara un lote manual; convive con el loop gracias a SKIP LOCKED.
func (h *AdminHandler) PublishOutbox(c *gin.Context) {
	limit := h.defaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	limit = sharedUtils.Clamp(limit, 1, maxManualBatch)

	res, err := h.publisher.PublishBatch(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		utils.SendInternalServerError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, res)
}

func RegisterAdminRoutes(r gin.IRouter, handler *AdminHandler) {
	admin := r.Group("/admin")
	{
		admin.POST("/outbox/publish", handler.PublishOutbox)
	}
}
