package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/docsearch/internal/search/application"
	"github.com/davicafu/docsearch/internal/search/domain"
	"github.com/davicafu/docsearch/pkg/utils"
)

type SearchHandler struct {
	service *application.QueryService
	debug   bool
}

func NewSearchHandler(service *application.QueryService, debug bool) *SearchHandler {
	return &SearchHandler{service: service, debug: debug}
}

// Search endpoint GET /search?q=&limit=&offset=
// limit/offset no numéricos se tratan como ausentes; fuera de rango se acotan.
func (h *SearchHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	q, err := domain.NewQuery(c.Query("q"), limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			utils.SendBadRequest(c, "query parameter q is required")
			return
		}
		utils.SendBadRequest(c, err.Error())
		return
	}

	result, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		utils.SendInternalServerError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, result)
}
