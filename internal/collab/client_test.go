package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
		RatePerSecond:  1000,
		RateBurst:      1000,
	}
}

func TestClient_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream flake", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := newClient(fastConfig(), testLogger())

	var dest struct {
		OK bool `json:"ok"`
	}
	err := c.getJSON(context.Background(), server.URL, nil, nil, &dest)
	require.NoError(t, err)
	assert.True(t, dest.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "permanently broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newClient(fastConfig(), testLogger())

	err := c.getJSON(context.Background(), server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	var gotContentType, gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newClient(fastConfig(), testLogger())

	headers := map[string]string{"Authorization": "Bearer token"}
	err := c.postJSON(context.Background(), server.URL, headers, map[string]string{"k": "v"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, map[string]string{"k": "v"}, gotBody)
}

func TestClient_RawMessageKeepsBodyVerbatim(t *testing.T) {
	body := `{"full_name": "Jane Doe", "extra": [1, 2, 3]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	c := newClient(fastConfig(), testLogger())

	var raw json.RawMessage
	err := c.getJSON(context.Background(), server.URL, nil, nil, &raw)
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
}

func TestClient_ContextCancellationStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := fastConfig()
	cfg.RetryBaseDelay = time.Minute // backoff longer than the deadline

	c := newClient(cfg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.getJSON(ctx, server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
}
