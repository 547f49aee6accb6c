package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codesentry/internal/conversation"
	"github.com/codesentry/internal/retry"
)

// Client talks to the remote multi-agent analysis service. Transport-level
// faults are retried with backoff; a status response is never retried, so the
// translator always sees the final status.

// AnalyzeRequest is the payload for the remote analysis call.
type AnalyzeRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message,omitempty"`
	SourceCode     string `json:"source_code"`
}

// AnalyzeResponse is the success payload returned by the remote service.
type AnalyzeResponse struct {
	ConversationID    string               `json:"conversation_id"`
	Summary           string               `json:"summary"`
	Issues            []conversation.Issue `json:"issues"`
	ImprovedCode      string               `json:"improved_code"`
	AwaitingUserInput bool                 `json:"awaiting_user_input"`
	SuggestedActions  []string             `json:"suggested_actions"`
}

// RemoteError is an HTTP-style failure from the remote service.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote analysis failed with status %d", e.StatusCode)
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	retryConfig retry.Config
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		retryConfig: retry.RemoteCallConfig(),
	}
}

// Analyze posts the request to the remote service. It returns either a parsed
// response, a *RemoteError for a non-2xx status, or the transport error after
// retries are exhausted.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode analyze request: %w", err)
	}

	var (
		resp      *AnalyzeResponse
		remoteErr *RemoteError
	)

	result := retry.WithBackoff(ctx, c.retryConfig, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
			log.Debug().Int("status", httpResp.StatusCode).Msg("remote analysis returned error status")
			remoteErr = &RemoteError{StatusCode: httpResp.StatusCode, Body: string(body)}
			return nil
		}

		resp = ParseAnalyzeResponse(body)
		return nil
	})

	if !result.Success {
		return nil, result.LastError
	}
	if remoteErr != nil {
		return nil, remoteErr
	}
	return resp, nil
}
