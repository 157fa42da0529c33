package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/AnTengye/clausewise/config"
)

const sampleNDAText = `1. Confidential Information. The Receiving Party shall protect all information disclosed by the Disclosing Party.
2. Term. This agreement remains in force for 5 years and both parties may terminate on written notice.
3. Remedies. A penalty of $10,000 applies to any breach by the Receiving Party.`

const sampleLeaseText = `1. Premises. The landlord leases the apartment to the tenant for residential use only.
2. Rent. The tenant pays monthly rent of $1,200 on the first day of each month.`

func testAnalysisConfig() *config.AnalysisConfig {
	return &config.AnalysisConfig{MinClauseLength: 20, MaxClauses: 200, MinDocumentLength: 50}
}

// fakePDFExtractor scripts MinerU behaviour.
type fakePDFExtractor struct {
	mu        sync.Mutex
	taskID    string
	zipURL    string
	text      string
	createErr error
	waitErr   error
	fetchErr  error
	created   []string
	waited    int
}

func (f *fakePDFExtractor) CreateTask(_ context.Context, fileURL, dataID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, dataID)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.taskID, nil
}

func (f *fakePDFExtractor) WaitForResult(_ context.Context, taskID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waited++
	if f.waitErr != nil {
		return "", f.waitErr
	}
	return f.zipURL, nil
}

func (f *fakePDFExtractor) FetchText(_ context.Context, zipURL string) (string, error) {
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	if zipURL != f.zipURL {
		return "", errors.New("unexpected zip url")
	}
	return f.text, nil
}

func decodeJSON(t *testing.T, r *http.Request, v any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Errorf("Failed to decode request: %v", err)
	}
}
