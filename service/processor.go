package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AnTengye/clausewise/model"
	"github.com/AnTengye/clausewise/pkg/i18n"
	"github.com/AnTengye/clausewise/pkg/logger"
)

// Processor extracts and analyses uploaded documents in the background.
type Processor struct {
	ctx         context.Context
	store       *DocumentStore
	pdf         PDFExtractor
	analyzer    *Analyzer
	useCallback bool
	wg          sync.WaitGroup
}

// NewProcessor binds background work to ctx; cancelling it aborts in-flight
// extractions. pdf may be nil, in which case PDF uploads fail. With
// useCallback set, PDF results arrive through HandleCallback instead of
// polling.
func NewProcessor(ctx context.Context, store *DocumentStore, pdf PDFExtractor, analyzer *Analyzer, useCallback bool) *Processor {
	return &Processor{
		ctx:         ctx,
		store:       store,
		pdf:         pdf,
		analyzer:    analyzer,
		useCallback: useCallback,
	}
}

// Submit starts processing doc. data holds the raw upload for formats that
// are extracted locally.
func (p *Processor) Submit(doc *model.Document, data []byte) {
	cp := *doc
	doc = &cp
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx := context.WithValue(p.ctx, logger.DocumentIDKey, doc.ID)
		ctx = context.WithValue(ctx, logger.TenantKey, doc.Tenant)
		p.process(ctx, doc, data)
	}()
}

// Wait blocks until every submitted document has finished processing.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func (p *Processor) process(ctx context.Context, doc *model.Document, data []byte) {
	log := logger.WithContext(ctx)
	log.Info("processing document", "extension", doc.Extension, "size", len(data))
	p.store.UpdateStatus(doc.ID, model.StatusProcessing, "")

	if doc.Extension != ExtPDF {
		text, err := ExtractLocalText(doc.Extension, data)
		if err != nil {
			log.Warn("text extraction failed", "error", err)
			text = ""
		}
		p.Finish(ctx, doc.ID, text)
		return
	}

	if p.pdf == nil {
		p.fail(ctx, doc.ID, errors.New("pdf extraction is not configured"))
		return
	}
	taskID, err := p.pdf.CreateTask(ctx, doc.FileURL, doc.ID)
	if err != nil {
		p.fail(ctx, doc.ID, fmt.Errorf("create extraction task: %w", err))
		return
	}
	p.store.Update(doc.ID, func(d *model.Document) { d.MineruTaskID = taskID })
	log.Info("extraction task created", "task_id", taskID)

	if p.useCallback {
		return
	}

	zipURL, err := p.pdf.WaitForResult(ctx, taskID)
	if err != nil {
		p.fail(ctx, doc.ID, err)
		return
	}
	p.fetchAndFinish(ctx, doc.ID, zipURL)
}

// HandleCallback completes a document whose extraction result was pushed by
// MinerU.
func (p *Processor) HandleCallback(ctx context.Context, status *MineruTaskStatus) error {
	doc, err := p.store.Get(status.DataID)
	if err != nil {
		doc, err = p.store.FindByTaskID(status.TaskID)
		if err != nil {
			return err
		}
	}
	ctx = context.WithValue(ctx, logger.DocumentIDKey, doc.ID)

	switch status.State {
	case MineruStateDone:
		if p.pdf == nil {
			return errors.New("pdf extraction is not configured")
		}
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.fetchAndFinish(context.WithoutCancel(ctx), doc.ID, status.FullZipURL)
		}()
	case MineruStateFailed:
		p.fail(ctx, doc.ID, fmt.Errorf("extraction failed: %s", status.ErrorMsg))
	default:
		logger.Debug(ctx, "extraction in progress", "state", status.State)
	}
	return nil
}

func (p *Processor) fetchAndFinish(ctx context.Context, docID, zipURL string) {
	text, err := p.pdf.FetchText(ctx, zipURL)
	if err != nil {
		logger.Warn(ctx, "fetching extracted text failed", "error", err)
		text = ""
	}
	p.Finish(ctx, docID, text)
}

// Finish analyses extracted text and records the outcome. Empty text fails
// the document; gate rejections mark it rejected.
func (p *Processor) Finish(ctx context.Context, docID, text string) {
	if strings.TrimSpace(text) == "" {
		p.fail(ctx, docID, errors.New("no text could be extracted"))
		return
	}

	report, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		logger.Info(ctx, "document rejected", "reason", err)
		p.store.Update(docID, func(d *model.Document) {
			d.Text = text
			d.Status = model.StatusRejected
			d.ErrorMsg = GateMessage(err, i18n.DefaultLanguage)
		})
		return
	}

	if err := p.store.Complete(docID, text, report); err != nil {
		logger.Warn(ctx, "document vanished before completion", "error", err)
		return
	}
	logger.Info(ctx, "document analysed",
		"document_type", report.DocumentType,
		"clauses", len(report.Clauses),
		"risks", len(report.Risks),
		"fairness", report.Fairness.Score,
	)
}

func (p *Processor) fail(ctx context.Context, docID string, err error) {
	logger.Error(ctx, "document processing failed", "error", err)
	p.store.UpdateStatus(docID, model.StatusFailed, err.Error())
}
