package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AnTengye/clausewise/config"
)

// ErrModelUnavailable wraps every failure of a hosted model call. Callers
// treat it as a signal to fall back to the heuristic path.
var ErrModelUnavailable = errors.New("model unavailable")

// InferenceClient calls models on a Hugging Face style inference API:
// POST {base}/{model} with {"inputs": ..., "parameters": ...}.
type InferenceClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func NewInferenceClient(cfg *config.ModelsConfig) *InferenceClient {
	return &InferenceClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Infer runs model over inputs and decodes the JSON response into out.
func (c *InferenceClient) Infer(ctx context.Context, model, inputs string, params map[string]any, out any) error {
	body, err := json.Marshal(inferenceRequest{Inputs: inputs, Parameters: params})
	if err != nil {
		return fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", ErrModelUnavailable, model, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d: %s", ErrModelUnavailable, model, resp.StatusCode, truncate(string(respBody), 200))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %s: parse response: %v", ErrModelUnavailable, model, err)
	}
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
