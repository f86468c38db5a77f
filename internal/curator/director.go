package curator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/storycut/internal/config"
)

// CurateRequest is the body accepted by the director proxy.
type CurateRequest struct {
	ClientID string `json:"client_id"`
	Prompt   string `json:"prompt"`
}

// CurateResponse is the director proxy's answer.
type CurateResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// StatusError is a non-2xx answer from the director proxy.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("director returned %d: %s", e.Code, e.Message)
}

// Temporary reports whether the request may succeed if retried.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type directorClient struct {
	baseURL  string
	clientID string
	token    string
	http     *http.Client
}

// NewDirectorClient creates a Reasoner that forwards prompts to a director
// proxy, which holds the model credentials and enforces quotas.
func NewDirectorClient(cfg config.DirectorConfig, hc *http.Client) Reasoner {
	return &directorClient{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		clientID: cfg.ClientID,
		token:    cfg.Token,
		http:     hc,
	}
}

func (d *directorClient) Reason(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(CurateRequest{ClientID: d.clientID, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/curate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call director: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read director response: %w", err)
	}

	var out CurateResponse
	_ = json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return "", &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if out.Text == "" {
		return "", fmt.Errorf("director: %w", ErrEmptyAnswer)
	}
	return out.Text, nil
}
