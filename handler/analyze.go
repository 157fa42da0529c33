package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/clausewise/pkg/i18n"
	"github.com/AnTengye/clausewise/service"
)

// AnalyzeHandler analyses posted text without storing anything.
type AnalyzeHandler struct {
	analyzer *service.Analyzer
}

func NewAnalyzeHandler(analyzer *service.Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

type AnalyzeRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"lang"`
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	lang := i18n.Resolve(req.Language, c.GetHeader("Accept-Language"))

	report, err := h.analyzer.Analyze(c.Request.Context(), req.Text)
	if errors.Is(err, service.ErrNotNDA) || errors.Is(err, service.ErrDocumentTooShort) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": service.GateMessage(err, lang)})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"language": lang,
		"report":   service.LocalizeReport(report, lang),
	})
}
