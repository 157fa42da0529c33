package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/model"
	"github.com/AnTengye/clausewise/pkg/i18n"
)

func newTestProcessor(t *testing.T, pdf PDFExtractor, useCallback bool, requireNDA bool) (*Processor, *DocumentStore) {
	t.Helper()
	store := NewDocumentStore(config.StoreConfig{MaxDocuments: 10, MaxChatTurns: 10})
	cfg := testAnalysisConfig()
	cfg.RequireNDA = requireNDA
	return NewProcessor(context.Background(), store, pdf, NewAnalyzer(cfg, nil), useCallback), store
}

func saveDoc(store *DocumentStore, id, ext string) *model.Document {
	doc := &model.Document{
		ID:        id,
		Tenant:    "tenant1",
		Extension: ext,
		FileURL:   "http://minio.test/" + id,
		Status:    model.StatusPending,
		CreatedAt: time.Now(),
	}
	store.Save(doc)
	return doc
}

func TestProcessorPlainText(t *testing.T) {
	p, store := newTestProcessor(t, nil, false, false)
	doc := saveDoc(store, "doc-1", ExtTXT)

	p.Submit(doc, []byte(sampleNDAText))
	p.Wait()

	got, _ := store.Get("doc-1")
	if got.Status != model.StatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", got.Status, got.ErrorMsg)
	}
	if got.Report == nil || !got.Report.IsNDA {
		t.Error("Expected NDA report")
	}
	if got.Text == "" {
		t.Error("Expected extracted text to be stored")
	}
}

func TestProcessorRejectsNonNDA(t *testing.T) {
	p, store := newTestProcessor(t, nil, false, true)
	doc := saveDoc(store, "doc-1", ExtTXT)

	p.Submit(doc, []byte(sampleLeaseText))
	p.Wait()

	got, _ := store.Get("doc-1")
	if got.Status != model.StatusRejected {
		t.Fatalf("Expected rejected, got %s", got.Status)
	}
	if got.ErrorMsg != i18n.T("en", i18n.NotNDA) {
		t.Errorf("Unexpected message %q", got.ErrorMsg)
	}
	if got.Report != nil {
		t.Error("Expected no report for rejected document")
	}
}

func TestProcessorEmptyTextFails(t *testing.T) {
	p, store := newTestProcessor(t, nil, false, false)

	txt := saveDoc(store, "doc-1", ExtTXT)
	p.Submit(txt, []byte("   \n  "))
	docx := saveDoc(store, "doc-2", ExtDOCX)
	p.Submit(docx, []byte("not a zip"))
	p.Wait()

	for _, id := range []string{"doc-1", "doc-2"} {
		got, _ := store.Get(id)
		if got.Status != model.StatusFailed {
			t.Errorf("Expected %s to fail, got %s", id, got.Status)
		}
	}
}

func TestProcessorPDFPolling(t *testing.T) {
	pdf := &fakePDFExtractor{taskID: "task-1", zipURL: "http://mineru.test/r.zip", text: sampleNDAText}
	p, store := newTestProcessor(t, pdf, false, false)
	doc := saveDoc(store, "doc-1", ExtPDF)

	p.Submit(doc, nil)
	p.Wait()

	got, _ := store.Get("doc-1")
	if got.Status != model.StatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", got.Status, got.ErrorMsg)
	}
	if got.MineruTaskID != "task-1" {
		t.Errorf("Expected task id to be recorded, got %q", got.MineruTaskID)
	}
	if len(pdf.created) != 1 || pdf.created[0] != "doc-1" || pdf.waited != 1 {
		t.Errorf("Unexpected extractor calls: created=%v waited=%d", pdf.created, pdf.waited)
	}
}

func TestProcessorPDFErrors(t *testing.T) {
	tests := []struct {
		name string
		pdf  *fakePDFExtractor
	}{
		{"create fails", &fakePDFExtractor{createErr: errors.New("quota")}},
		{"wait fails", &fakePDFExtractor{taskID: "t", waitErr: errors.New("timeout")}},
		{"fetch fails", &fakePDFExtractor{taskID: "t", zipURL: "z", fetchErr: errors.New("404")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store := newTestProcessor(t, tt.pdf, false, false)
			doc := saveDoc(store, "doc-1", ExtPDF)

			p.Submit(doc, nil)
			p.Wait()

			got, _ := store.Get("doc-1")
			if got.Status != model.StatusFailed || got.ErrorMsg == "" {
				t.Errorf("Expected failure with message, got %s %q", got.Status, got.ErrorMsg)
			}
		})
	}
}

func TestProcessorPDFWithoutExtractor(t *testing.T) {
	p, store := newTestProcessor(t, nil, false, false)
	doc := saveDoc(store, "doc-1", ExtPDF)

	p.Submit(doc, nil)
	p.Wait()

	got, _ := store.Get("doc-1")
	if got.Status != model.StatusFailed {
		t.Errorf("Expected failed, got %s", got.Status)
	}
}

func TestProcessorCallbackFlow(t *testing.T) {
	pdf := &fakePDFExtractor{taskID: "task-9", zipURL: "http://mineru.test/r.zip", text: sampleNDAText}
	p, store := newTestProcessor(t, pdf, true, false)
	doc := saveDoc(store, "doc-1", ExtPDF)

	p.Submit(doc, nil)
	p.Wait()

	got, _ := store.Get("doc-1")
	if got.Status != model.StatusProcessing {
		t.Fatalf("Expected processing while waiting for callback, got %s", got.Status)
	}
	if pdf.waited != 0 {
		t.Error("Expected no polling in callback mode")
	}

	err := p.HandleCallback(context.Background(), &MineruTaskStatus{
		TaskID:     "task-9",
		State:      MineruStateDone,
		FullZipURL: "http://mineru.test/r.zip",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	p.Wait()

	got, _ = store.Get("doc-1")
	if got.Status != model.StatusCompleted {
		t.Errorf("Expected completed after callback, got %s (%s)", got.Status, got.ErrorMsg)
	}
}

func TestProcessorCallbackFailedAndUnknown(t *testing.T) {
	p, store := newTestProcessor(t, &fakePDFExtractor{}, true, false)
	saveDoc(store, "doc-1", ExtPDF)

	if err := p.HandleCallback(context.Background(), &MineruTaskStatus{DataID: "doc-1", State: MineruStateFailed, ErrorMsg: "corrupt"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, _ := store.Get("doc-1")
	if got.Status != model.StatusFailed {
		t.Errorf("Expected failed, got %s", got.Status)
	}

	err := p.HandleCallback(context.Background(), &MineruTaskStatus{DataID: "missing", TaskID: "nope", State: MineruStateDone})
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound, got %v", err)
	}
}
