package model

import (
	"time"

	"github.com/AnTengye/clausewise/pkg/analysis"
)

// Document is an uploaded contract and the state of its analysis.
type Document struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Tenant       string    `json:"tenant"`
	Owner        string    `json:"owner"`
	Extension    string    `json:"extension"`
	ObjectName   string    `json:"object_name,omitempty"`
	FileURL      string    `json:"file_url,omitempty"`
	Status       string    `json:"status"` // pending, processing, completed, failed, rejected
	MineruTaskID string    `json:"mineru_task_id,omitempty"`
	Text         string    `json:"-"`
	Report       *Report   `json:"report,omitempty"`
	ErrorMsg     string    `json:"error_msg,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Document status values.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusRejected   = "rejected" // extracted fine but not an NDA, or too short
)

// Done reports whether processing has reached a terminal state.
func (d *Document) Done() bool {
	switch d.Status {
	case StatusCompleted, StatusFailed, StatusRejected:
		return true
	}
	return false
}

// Report is the analysis result stored with a document.
type Report struct {
	analysis.Result
	Message    string    `json:"message"`
	RiskNote   string    `json:"risk_note,omitempty"`
	Disclaimer string    `json:"disclaimer"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// TopRisk returns the first risk label, or "" when nothing fired.
func (r *Report) TopRisk() string {
	if r == nil || len(r.Risks) == 0 {
		return ""
	}
	return r.Risks[0].Label
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session carries per-request chat state. It is passed explicitly; nothing
// about a conversation lives in package-level state.
type Session struct {
	Language string
	History  []ChatTurn
}

// DocumentSummary is the list view of a document.
type DocumentSummary struct {
	ID           string                `json:"id"`
	Filename     string                `json:"filename"`
	Status       string                `json:"status"`
	DocumentType analysis.DocumentType `json:"document_type,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

func (d *Document) Summary() DocumentSummary {
	s := DocumentSummary{
		ID:        d.ID,
		Filename:  d.Filename,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}
	if d.Report != nil {
		s.DocumentType = d.Report.DocumentType
	}
	return s
}
