package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/clausewise/pkg/logger"
	"github.com/AnTengye/clausewise/service"
)

// CallbackParser verifies and decodes MinerU callbacks.
type CallbackParser interface {
	ParseCallback(payload service.MineruCallbackPayload) (*service.MineruTaskStatus, error)
}

type CallbackHandler struct {
	parser    CallbackParser
	processor *service.Processor
}

func NewCallbackHandler(parser CallbackParser, processor *service.Processor) *CallbackHandler {
	return &CallbackHandler{parser: parser, processor: processor}
}

// HandleCallback receives extraction results pushed by MinerU.
func (h *CallbackHandler) HandleCallback(c *gin.Context) {
	var payload service.MineruCallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status, err := h.parser.ParseCallback(payload)
	if errors.Is(err, service.ErrInvalidChecksum) {
		logger.Warn(c.Request.Context(), "rejected mineru callback", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid checksum"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content format"})
		return
	}

	logger.Info(c.Request.Context(), "mineru callback received",
		"task_id", status.TaskID, "data_id", status.DataID, "state", status.State)

	if err := h.processor.HandleCallback(c.Request.Context(), status); err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Callback received"})
}
