package http

import "github.com/gin-gonic/gin"

func RegisterSearchRoutes(r gin.IRouter, handler *SearchHandler) {
	r.GET("/search", handler.Search)
}
