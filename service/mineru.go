package service

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/pkg/logger"
)

// MinerU task states.
const (
	MineruStatePending    = "pending"
	MineruStateRunning    = "running"
	MineruStateConverting = "converting"
	MineruStateDone       = "done"
	MineruStateFailed     = "failed"
)

var (
	ErrNoTextInArchive = errors.New("no text found in extraction archive")
	ErrInvalidChecksum = errors.New("invalid callback checksum")
)

// PDFExtractor turns a remotely reachable PDF into plain text.
type PDFExtractor interface {
	CreateTask(ctx context.Context, fileURL, dataID string) (string, error)
	WaitForResult(ctx context.Context, taskID string) (string, error)
	FetchText(ctx context.Context, zipURL string) (string, error)
}

type MineruService struct {
	config     *config.MineruConfig
	httpClient *http.Client
}

var _ PDFExtractor = (*MineruService)(nil)

type MineruTaskRequest struct {
	URL          string `json:"url"`
	ModelVersion string `json:"model_version"`
	Callback     string `json:"callback,omitempty"`
	Seed         string `json:"seed,omitempty"`
	DataID       string `json:"data_id,omitempty"`
}

type MineruTaskResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

type MineruTaskStatus struct {
	TaskID          string `json:"task_id"`
	DataID          string `json:"data_id"`
	State           string `json:"state"`
	FullZipURL      string `json:"full_zip_url,omitempty"`
	ErrorMsg        string `json:"err_msg,omitempty"`
	ExtractProgress struct {
		ExtractedPages int `json:"extracted_pages"`
		TotalPages     int `json:"total_pages"`
	} `json:"extract_progress,omitempty"`
}

type MineruTaskStatusResponse struct {
	Code    int              `json:"code"`
	Message string           `json:"msg"`
	TraceID string           `json:"trace_id"`
	Data    MineruTaskStatus `json:"data"`
}

// MineruCallbackPayload is what MinerU posts to the callback URL. Content is
// a JSON-encoded MineruTaskStatus.
type MineruCallbackPayload struct {
	Checksum string `json:"checksum"`
	Content  string `json:"content"`
}

// contentBlock is one entry of content_list.json.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewMineruService(cfg *config.MineruConfig) *MineruService {
	return &MineruService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CreateTask submits fileURL for extraction and returns the task ID.
func (s *MineruService) CreateTask(ctx context.Context, fileURL, dataID string) (string, error) {
	reqBody := MineruTaskRequest{
		URL:          fileURL,
		ModelVersion: s.config.ModelVersion,
		DataID:       dataID,
	}
	if s.config.CallbackURL != "" {
		reqBody.Callback = s.config.CallbackURL
		reqBody.Seed = s.config.Seed
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal task request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL+"/extract/task", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result MineruTaskResponse
	if err := s.do(req, &result); err != nil {
		return "", err
	}
	if result.Code != 0 {
		return "", fmt.Errorf("mineru: %s", result.Message)
	}
	return result.Data.TaskID, nil
}

// GetTaskStatus queries the state of a task.
func (s *MineruService) GetTaskStatus(ctx context.Context, taskID string) (*MineruTaskStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/extract/task/%s", s.config.APIURL, taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var result MineruTaskStatusResponse
	if err := s.do(req, &result); err != nil {
		return nil, err
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("mineru: %s", result.Message)
	}
	return &result.Data, nil
}

func (s *MineruService) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	req.Header.Set("Accept", "*/*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	logger.Debug(req.Context(), "mineru response", "url", req.URL.Path, "status", resp.StatusCode, "body_len", len(body))

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// WaitForResult polls the task until it finishes and returns the result ZIP
// URL. It gives up after the configured number of attempts.
func (s *MineruService) WaitForResult(ctx context.Context, taskID string) (string, error) {
	interval := time.Duration(s.config.PollIntervalSeconds) * time.Second
	attempts := max(s.config.PollAttempts, 1)

	ticker := time.NewTicker(max(interval, time.Millisecond))
	defer ticker.Stop()

	for i := 0; i < attempts; i++ {
		status, err := s.GetTaskStatus(ctx, taskID)
		if err != nil {
			logger.Warn(ctx, "mineru status query failed", "task_id", taskID, "attempt", i+1, "error", err)
		} else {
			switch status.State {
			case MineruStateDone:
				if status.FullZipURL == "" {
					return "", fmt.Errorf("task %s finished without result", taskID)
				}
				return status.FullZipURL, nil
			case MineruStateFailed:
				return "", fmt.Errorf("task %s failed: %s", taskID, status.ErrorMsg)
			}
			logger.Debug(ctx, "mineru task in progress", "task_id", taskID, "state", status.State,
				"pages", status.ExtractProgress.ExtractedPages, "total", status.ExtractProgress.TotalPages)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
	return "", fmt.Errorf("task %s did not finish after %d attempts", taskID, attempts)
}

// VerifyCallback checks checksum == sha256(uid + seed + content).
func (s *MineruService) VerifyCallback(checksum, content, uid string) bool {
	hash := sha256.Sum256([]byte(uid + s.config.Seed + content))
	return checksum == hex.EncodeToString(hash[:])
}

// ParseCallback verifies a callback payload against the account UID and
// decodes its task status. Without a configured seed nothing is verified.
func (s *MineruService) ParseCallback(payload MineruCallbackPayload) (*MineruTaskStatus, error) {
	if s.config.Seed != "" && !s.VerifyCallback(payload.Checksum, payload.Content, s.config.UID) {
		return nil, ErrInvalidChecksum
	}
	var status MineruTaskStatus
	if err := json.Unmarshal([]byte(payload.Content), &status); err != nil {
		return nil, fmt.Errorf("parse callback content: %w", err)
	}
	return &status, nil
}

// FetchText downloads the result ZIP and returns the extracted document text,
// preferring full.md and falling back to the text blocks of content_list.json.
func (s *MineruService) FetchText(ctx context.Context, zipURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download result: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read result: %w", err)
	}
	logger.Debug(ctx, "mineru result downloaded", "size", len(data))

	return textFromArchive(data)
}

func textFromArchive(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	var contentList *zip.File
	for _, f := range zr.File {
		switch name := path.Base(f.Name); {
		case name == "full.md":
			content, err := readZipFile(f)
			if err == nil && strings.TrimSpace(content) != "" {
				return content, nil
			}
		case strings.HasSuffix(name, "content_list.json"):
			contentList = f
		}
	}
	if contentList == nil {
		return "", ErrNoTextInArchive
	}

	raw, err := readZipFile(contentList)
	if err != nil {
		return "", err
	}
	var blocks []contentBlock
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return "", fmt.Errorf("parse %s: %w", contentList.Name, err)
	}

	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && strings.TrimSpace(b.Text) != "" {
			parts = append(parts, strings.TrimSpace(b.Text))
		}
	}
	if len(parts) == 0 {
		return "", ErrNoTextInArchive
	}
	return strings.Join(parts, "\n\n"), nil
}

func readZipFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return string(content), nil
}
