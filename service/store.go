package service

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/model"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore keeps documents and their chat history in memory. Nothing is
// persisted; a restart forgets every upload.
type DocumentStore struct {
	mu           sync.RWMutex
	documents    map[string]*model.Document
	chats        map[string][]model.ChatTurn
	maxDocuments int // 0 = unlimited
	maxChatTurns int // 0 = unlimited
}

var (
	globalStore *DocumentStore
	storeOnce   sync.Once
)

func NewDocumentStore(cfg config.StoreConfig) *DocumentStore {
	return &DocumentStore{
		documents:    make(map[string]*model.Document),
		chats:        make(map[string][]model.ChatTurn),
		maxDocuments: max(cfg.MaxDocuments, 0),
		maxChatTurns: max(cfg.MaxChatTurns, 0),
	}
}

// InitDocumentStore initializes the global store once.
func InitDocumentStore(cfg config.StoreConfig) *DocumentStore {
	storeOnce.Do(func() {
		globalStore = NewDocumentStore(cfg)
		slog.Info("document store initialized",
			"max_documents", globalStore.maxDocuments,
			"max_chat_turns", globalStore.maxChatTurns,
		)
	})
	return globalStore
}

// GetDocumentStore returns the global store, creating one with defaults if
// InitDocumentStore was never called.
func GetDocumentStore() *DocumentStore {
	return InitDocumentStore(config.StoreConfig{MaxDocuments: 100, MaxChatTurns: 50})
}

// Save stores a copy of doc; later changes to the caller's value are not
// seen by the store.
func (s *DocumentStore) Save(doc *model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.UpdatedAt = time.Now()
	cp := *doc
	s.documents[doc.ID] = &cp
	s.evictIfNeeded()
}

// Get returns a copy of the document so callers never race the processor.
func (s *DocumentStore) Get(id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

// GetForTenant is Get restricted to one tenant; other tenants' documents are
// reported as not found.
func (s *DocumentStore) GetForTenant(id, tenant string) (*model.Document, error) {
	doc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if doc.Tenant != tenant {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// FindByTaskID looks up the document waiting on a MinerU task.
func (s *DocumentStore) FindByTaskID(taskID string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if taskID != "" && doc.MineruTaskID == taskID {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, ErrDocumentNotFound
}

// ListByTenant returns the tenant's documents, newest first.
func (s *DocumentStore) ListByTenant(tenant string) []*model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*model.Document{}
	for _, doc := range s.documents {
		if doc.Tenant == tenant {
			cp := *doc
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *DocumentStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chats, id)
}

// Update applies fn to the stored document under the write lock.
func (s *DocumentStore) Update(id string, fn func(doc *model.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return ErrDocumentNotFound
	}
	fn(doc)
	doc.UpdatedAt = time.Now()
	return nil
}

func (s *DocumentStore) UpdateStatus(id, status, errMsg string) error {
	return s.Update(id, func(doc *model.Document) {
		doc.Status = status
		doc.ErrorMsg = errMsg
	})
}

// Complete stores the extracted text and report and marks the document done.
func (s *DocumentStore) Complete(id, text string, report *model.Report) error {
	return s.Update(id, func(doc *model.Document) {
		doc.Text = text
		doc.Report = report
		doc.Status = model.StatusCompleted
		doc.ErrorMsg = ""
	})
}

// AppendChat records turns for a document, keeping only the newest
// maxChatTurns.
func (s *DocumentStore) AppendChat(id string, turns ...model.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return ErrDocumentNotFound
	}
	history := append(s.chats[id], turns...)
	if s.maxChatTurns > 0 && len(history) > s.maxChatTurns {
		history = append([]model.ChatTurn(nil), history[len(history)-s.maxChatTurns:]...)
	}
	s.chats[id] = history
	return nil
}

// ChatHistory returns a copy of the document's chat turns, oldest first.
func (s *DocumentStore) ChatHistory(id string) []model.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChatTurn{}, s.chats[id]...)
}

// evictIfNeeded removes the oldest documents beyond maxDocuments.
// Must be called with lock held.
func (s *DocumentStore) evictIfNeeded() {
	if s.maxDocuments <= 0 || len(s.documents) <= s.maxDocuments {
		return
	}

	docs := make([]*model.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	for _, doc := range docs[:len(docs)-s.maxDocuments] {
		slog.Info("evicting old document",
			"document_id", doc.ID,
			"created_at", doc.CreatedAt,
		)
		delete(s.documents, doc.ID)
		delete(s.chats, doc.ID)
	}
}

func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
