package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/model"
	"github.com/AnTengye/clausewise/service"
)

const sampleNDAText = `1. Confidential Information. The Receiving Party shall protect all information disclosed by the Disclosing Party.
2. Term. This agreement remains in force for 5 years and both parties may terminate on written notice.
3. Remedies. A penalty of $10,000 applies to any breach by the Receiving Party.`

const sampleLeaseText = `1. Premises. The landlord leases the apartment to the tenant for residential use only.
2. Rent. The tenant pays monthly rent of $1,200 on the first day of each month.`

// fakeStorage keeps uploaded objects in memory.
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	deleted   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	return nil
}

func (f *fakeStorage) PresignedURL(_ context.Context, objectName string) (string, error) {
	return "https://storage.test/" + objectName, nil
}

func (f *fakeStorage) Download(_ context.Context, objectName string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectName]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func (f *fakeStorage) Delete(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectName)
	f.deleted = append(f.deleted, objectName)
	return nil
}

type testEnv struct {
	store     *service.DocumentStore
	storage   *fakeStorage
	analyzer  *service.Analyzer
	processor *service.Processor
	handler   *DocumentHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := service.NewDocumentStore(config.StoreConfig{MaxDocuments: 100, MaxChatTurns: 10})
	analyzer := service.NewAnalyzer(&config.AnalysisConfig{MinClauseLength: 20, MaxClauses: 200, MinDocumentLength: 50}, nil)
	processor := service.NewProcessor(context.Background(), store, nil, analyzer, false)
	storage := newFakeStorage()

	t.Cleanup(processor.Wait)
	return &testEnv{
		store:     store,
		storage:   storage,
		analyzer:  analyzer,
		processor: processor,
		handler: &DocumentHandler{
			storage:        storage,
			processor:      processor,
			store:          store,
			simplifier:     service.HeuristicSimplifier{},
			chat:           service.NewChatService(nil, 4),
			maxUploadBytes: 1 << 20,
		},
	}
}

// seedDocument stores an analysed document for tenant.
func (e *testEnv) seedDocument(t *testing.T, id, tenant, text string) *model.Document {
	t.Helper()
	report, err := e.analyzer.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Failed to analyse seed text: %v", err)
	}
	doc := &model.Document{
		ID:        id,
		Filename:  id + ".txt",
		Tenant:    tenant,
		Extension: service.ExtTXT,
		Status:    model.StatusCompleted,
		Text:      text,
		Report:    report,
		CreatedAt: time.Now(),
	}
	e.store.Save(doc)
	return doc
}

// router mounts the document routes with tenant1 as the caller.
func (e *testEnv) router() *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("username", "alice")
		c.Set("tenant", "tenant1")
		c.Next()
	})
	router.POST("/documents/upload", e.handler.Upload)
	router.GET("/documents", e.handler.List)
	router.POST("/documents/compare", e.handler.Compare)
	router.GET("/documents/:id", e.handler.Get)
	router.GET("/documents/:id/status", e.handler.GetStatus)
	router.DELETE("/documents/:id", e.handler.Delete)
	router.GET("/documents/:id/report", e.handler.Report)
	router.POST("/documents/:id/simplify", e.handler.Simplify)
	router.POST("/documents/:id/chat", e.handler.Chat)
	router.GET("/documents/:id/chat", e.handler.ChatHistory)
	return router
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doUpload(router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", filename)
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to parse response: %v (%s)", err, w.Body.String())
	}
}
