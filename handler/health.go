package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/clausewise/pkg/analysis"
	"github.com/AnTengye/clausewise/service"
)

type HealthHandler struct {
	store *service.DocumentStore
}

func NewHealthHandler(store *service.DocumentStore) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"documents":      h.store.Count(),
		"tables_version": analysis.TablesVersion,
	})
}
