package http

import "github.com/gin-gonic/gin"

func RegisterDocumentRoutes(r gin.IRouter, handler *DocumentHandler) {
	documents := r.Group("/documents")
	{
		documents.POST("", handler.CreateDocument)
		documents.GET("", handler.ListDocuments)
		documents.GET("/:id", handler.GetDocument)
		documents.PUT("/:id", handler.UpdateDocument)
	}
}
