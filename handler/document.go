package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AnTengye/clausewise/middleware"
	"github.com/AnTengye/clausewise/model"
	"github.com/AnTengye/clausewise/pkg/analysis"
	"github.com/AnTengye/clausewise/pkg/i18n"
	"github.com/AnTengye/clausewise/pkg/logger"
	"github.com/AnTengye/clausewise/service"
)

// simplifyClauseCount is how many clauses are simplified when the request
// names none.
const simplifyClauseCount = 5

type DocumentHandler struct {
	storage        service.ObjectStorage
	processor      *service.Processor
	store          *service.DocumentStore
	simplifier     service.Simplifier
	chat           *service.ChatService
	maxUploadBytes int64
}

// NewDocumentHandler wires the document endpoints. storage may be nil, in
// which case only locally extracted formats are accepted.
func NewDocumentHandler(store *service.DocumentStore, storage service.ObjectStorage, processor *service.Processor, simplifier service.Simplifier, chat *service.ChatService, maxUploadMB int) *DocumentHandler {
	return &DocumentHandler{
		storage:        storage,
		processor:      processor,
		store:          store,
		simplifier:     simplifier,
		chat:           chat,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

func requestLanguage(c *gin.Context) string {
	return i18n.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// lookup loads a document of the caller's tenant, writing a 404 when absent.
func (h *DocumentHandler) lookup(c *gin.Context, id string) (*model.Document, bool) {
	doc, err := h.store.GetForTenant(id, middleware.GetTenant(c))
	if errors.Is(err, service.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return doc, true
}

// analysed is lookup for endpoints that need a finished report.
func (h *DocumentHandler) analysed(c *gin.Context, id string) (*model.Document, bool) {
	doc, ok := h.lookup(c, id)
	if !ok {
		return nil, false
	}
	if doc.Status != model.StatusCompleted || doc.Report == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Document analysis is not available",
			"status": doc.Status,
		})
		return nil, false
	}
	return doc, true
}

// Upload stores a contract and starts background analysis.
func (h *DocumentHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	tenant := middleware.GetTenant(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext, err := service.NormalizeExtension(header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF, DOCX and TXT files are allowed"})
		return
	}
	if ext == service.ExtPDF && h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "PDF upload requires object storage"})
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds %d MB", h.maxUploadBytes>>20)})
		return
	}

	var reader io.Reader = file
	if h.maxUploadBytes > 0 {
		reader = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds %d MB", h.maxUploadBytes>>20)})
		return
	}
	if ext == service.ExtPDF && !bytes.HasPrefix(data, []byte("%PDF")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return
	}

	now := time.Now()
	doc := &model.Document{
		ID:        uuid.NewString(),
		Filename:  header.Filename,
		Tenant:    tenant,
		Owner:     middleware.GetUsername(c),
		Extension: ext,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if h.storage != nil {
		doc.ObjectName = service.ObjectName(tenant, doc.ID, ext)
		if err := h.storage.Upload(ctx, doc.ObjectName, bytes.NewReader(data), int64(len(data)), service.ContentType(ext)); err != nil {
			logger.Error(ctx, "upload to object storage failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file: " + err.Error()})
			return
		}
		doc.FileURL, err = h.storage.PresignedURL(ctx, doc.ObjectName)
		if err != nil {
			logger.Error(ctx, "presigning object failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
			return
		}
	}

	h.store.Save(doc)
	response := gin.H{
		"id":       doc.ID,
		"filename": doc.Filename,
		"status":   doc.Status,
	}
	h.processor.Submit(doc, data)
	logger.Info(ctx, "document uploaded", "document_id", doc.ID, "filename", doc.Filename, "size", len(data))

	c.JSON(http.StatusAccepted, response)
}

// List returns the tenant's documents without their reports.
func (h *DocumentHandler) List(c *gin.Context) {
	docs := h.store.ListByTenant(middleware.GetTenant(c))

	result := make([]model.DocumentSummary, len(docs))
	for i, doc := range docs {
		result[i] = doc.Summary()
	}
	c.JSON(http.StatusOK, gin.H{"documents": result})
}

// Get returns a document with its report in the request language.
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, ok := h.lookup(c, c.Param("id"))
	if !ok {
		return
	}
	if doc.Report != nil {
		doc.Report = service.LocalizeReport(doc.Report, requestLanguage(c))
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) GetStatus(c *gin.Context) {
	doc, ok := h.lookup(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        doc.ID,
		"status":    doc.Status,
		"error_msg": localizeError(doc, requestLanguage(c)),
	})
}

// localizeError translates stored gate messages, which are kept in English.
func localizeError(doc *model.Document, lang string) string {
	if doc.Status == model.StatusRejected && doc.ErrorMsg == i18n.T(i18n.DefaultLanguage, i18n.NotNDA) {
		return i18n.T(lang, i18n.NotNDA)
	}
	return doc.ErrorMsg
}

// Delete removes a document, its chat history and its stored original.
func (h *DocumentHandler) Delete(c *gin.Context) {
	doc, ok := h.lookup(c, c.Param("id"))
	if !ok {
		return
	}

	if h.storage != nil && doc.ObjectName != "" {
		if err := h.storage.Delete(c.Request.Context(), doc.ObjectName); err != nil {
			logger.Warn(c.Request.Context(), "deleting stored object failed", "object", doc.ObjectName, "error", err)
		}
	}
	h.store.Delete(doc.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// Report returns the localized analysis report.
func (h *DocumentHandler) Report(c *gin.Context) {
	lang := requestLanguage(c)
	doc, ok := h.lookup(c, c.Param("id"))
	if !ok {
		return
	}

	switch {
	case doc.Status == model.StatusRejected:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": localizeError(doc, lang), "status": doc.Status})
	case doc.Report == nil:
		c.JSON(http.StatusConflict, gin.H{"error": "Document analysis is not available", "status": doc.Status})
	default:
		c.JSON(http.StatusOK, gin.H{
			"id":       doc.ID,
			"filename": doc.Filename,
			"language": lang,
			"report":   service.LocalizeReport(doc.Report, lang),
		})
	}
}

type SimplifyRequest struct {
	Mode        string `json:"mode"`
	ClauseIndex *int   `json:"clause_index"`
	Text        string `json:"text"`
}

type SimplifiedClause struct {
	Index      int    `json:"index"`
	Original   string `json:"original"`
	Simplified string `json:"simplified"`
}

// Simplify rewrites one clause, free text, or the leading clauses in plain
// language.
func (h *DocumentHandler) Simplify(c *gin.Context) {
	var req SimplifyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, ok := h.analysed(c, c.Param("id"))
	if !ok {
		return
	}
	clauses := doc.Report.Clauses

	var targets []SimplifiedClause
	switch {
	case req.Text != "":
		targets = []SimplifiedClause{{Index: -1, Original: req.Text}}
	case req.ClauseIndex != nil:
		i := *req.ClauseIndex
		if i < 0 || i >= len(clauses) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("clause_index must be between 0 and %d", len(clauses)-1)})
			return
		}
		targets = []SimplifiedClause{{Index: i, Original: clauses[i].Text}}
	default:
		for i, clause := range clauses[:min(len(clauses), simplifyClauseCount)] {
			targets = append(targets, SimplifiedClause{Index: i, Original: clause.Text})
		}
	}

	for i := range targets {
		out, err := h.simplifier.Simplify(c.Request.Context(), targets[i].Original, mode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		targets[i].Simplified = out
	}

	c.JSON(http.StatusOK, gin.H{"mode": mode, "clauses": targets})
}

type ChatRequest struct {
	Question string `json:"question" binding:"required"`
	Language string `json:"lang"`
}

// Chat answers a question about the document and records both turns.
func (h *DocumentHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	doc, ok := h.analysed(c, c.Param("id"))
	if !ok {
		return
	}

	session := model.Session{
		Language: i18n.Resolve(req.Language, c.GetHeader("Accept-Language")),
		History:  h.store.ChatHistory(doc.ID),
	}
	answer, err := h.chat.Ask(c.Request.Context(), doc, session, req.Question)
	if errors.Is(err, service.ErrEmptyQuestion) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if err := h.store.AppendChat(doc.ID,
		model.ChatTurn{Role: model.RoleUser, Content: req.Question, CreatedAt: now},
		model.ChatTurn{Role: model.RoleAssistant, Content: answer, CreatedAt: now},
	); err != nil {
		logger.Warn(c.Request.Context(), "recording chat failed", "document_id", doc.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":   answer,
		"language": session.Language,
	})
}

func (h *DocumentHandler) ChatHistory(c *gin.Context) {
	doc, ok := h.lookup(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": h.store.ChatHistory(doc.ID)})
}

type CompareRequest struct {
	LeftID  string `json:"left_id" binding:"required"`
	RightID string `json:"right_id" binding:"required"`
}

// Compare contrasts two analysed documents of the same tenant.
func (h *DocumentHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	left, ok := h.analysed(c, req.LeftID)
	if !ok {
		return
	}
	right, ok := h.analysed(c, req.RightID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"left":       left.Summary(),
		"right":      right.Summary(),
		"comparison": analysis.Compare(left.Report.Result, right.Report.Result),
	})
}
