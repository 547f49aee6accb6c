package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesentry/internal/retry"
)

func newTestClient(url string) *Client {
	c := NewClient(url, 5*time.Second)
	c.retryConfig = retry.Config{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	return c
}

func TestAnalyzeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{
			"conversation_id": "conv-1",
			"summary": "Looks good",
			"issues": [{"type": "PERFORMANCE", "description": "slow loop", "suggestion": "use a map"}],
			"awaiting_user_input": true,
			"suggested_actions": ["Apply fix"]
		}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Analyze(context.Background(), AnalyzeRequest{SourceCode: "fun f() {}"})
	require.NoError(t, err)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, "Looks good", resp.Summary)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, "PERFORMANCE", resp.Issues[0].Kind)
	assert.True(t, resp.AwaitingUserInput)
	assert.Equal(t, []string{"Apply fix"}, resp.SuggestedActions)
}

func TestAnalyzeStatusErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"type":"invalid_input"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.retryConfig.MaxRetries = 3

	_, err := c.Analyze(context.Background(), AnalyzeRequest{SourceCode: "x"})
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 422, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Body, "invalid_input")
	assert.Equal(t, 1, calls, "status responses are final, never retried")
}

func TestAnalyzeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, so the dial fails

	_, err := newTestClient(srv.URL).Analyze(context.Background(), AnalyzeRequest{SourceCode: "x"})
	require.Error(t, err)

	var remoteErr *RemoteError
	assert.False(t, errors.As(err, &remoteErr), "transport faults pass through untranslated")
}

func TestParseAnalyzeResponseFallbacks(t *testing.T) {
	// Valid JSON decodes directly.
	resp := ParseAnalyzeResponse([]byte(`{"summary": "ok"}`))
	assert.Equal(t, "ok", resp.Summary)

	// A trailing comma is repaired rather than rejected.
	resp = ParseAnalyzeResponse([]byte(`{"summary": "fixed", "issues": [],}`))
	assert.Equal(t, "fixed", resp.Summary)

	// Unrepairable input becomes the summary verbatim.
	resp = ParseAnalyzeResponse([]byte("  plain text verdict  "))
	assert.Equal(t, "plain text verdict", resp.Summary)
	assert.Empty(t, resp.Issues)
}
