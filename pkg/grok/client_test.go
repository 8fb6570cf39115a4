package grok_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gchat/pkg/grok"
)

func testClient(t *testing.T, handler http.HandlerFunc) *grok.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return grok.NewClient(&grok.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "grok-test",
		Timeout: 5 * time.Second,
	})
}

func TestCompleteSuccess(t *testing.T) {
	var gotReq grok.Request
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": "Hi there"},
					"finish_reason": "stop",
				},
			},
		})
	})

	reply, err := client.Complete(context.Background(),
		[]grok.Message{{Role: "user", Content: "Hello"}}, 0.7, 4096)
	require.NoError(t, err)

	assert.Equal(t, "Hi there", reply.Content)
	assert.False(t, reply.Truncated())

	assert.Equal(t, "grok-test", gotReq.Model)
	assert.Equal(t, 0.7, gotReq.Temperature)
	assert.Equal(t, 4096, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestCompleteTruncated(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": "partial"},
					"finish_reason": "length",
				},
			},
		})
	})

	reply, err := client.Complete(context.Background(), []grok.Message{{Role: "user", Content: "q"}}, 1.0, 1024)
	require.NoError(t, err)
	assert.True(t, reply.Truncated())
}

func TestCompleteAPIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model overloaded"}`, http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), []grok.Message{{Role: "user", Content: "q"}}, 1.0, 1024)
	require.Error(t, err)

	var apiErr *grok.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Contains(t, apiErr.Body, "overloaded")
}

func TestCompleteMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := client.Complete(context.Background(), []grok.Message{{Role: "user", Content: "q"}}, 1.0, 1024)
	assert.Error(t, err)
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Complete(context.Background(), []grok.Message{{Role: "user", Content: "q"}}, 1.0, 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewClientLeavesConfigUntouched(t *testing.T) {
	cfg := &grok.Config{APIKey: "k"}
	client := grok.NewClient(cfg)

	assert.Empty(t, cfg.BaseURL, "defaulting must not write back into the caller's config")
	assert.Empty(t, cfg.Model)
	assert.Equal(t, grok.DefaultModel, client.Model())
}

func TestCompleteMissingAPIKey(t *testing.T) {
	client := grok.NewClient(&grok.Config{})
	_, err := client.Complete(context.Background(), []grok.Message{{Role: "user", Content: "q"}}, 1.0, 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), grok.EnvAPIKey)
}
