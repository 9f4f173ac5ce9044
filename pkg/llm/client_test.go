package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// Text 兼容字符串和 [{"type":"text","text":...}] 两种 content 格式。
func (m capturedMessage) Text() string {
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}
	var parts []struct {
		Text string `json:"text"`
	}
	_ = json.Unmarshal(m.Content, &parts)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

type capturedRequest struct {
	Model       string            `json:"model"`
	Temperature *float64          `json:"temperature"`
	Messages    []capturedMessage `json:"messages"`
}

// fakeCompletionServer 模拟 chat/completions 接口，返回固定的回复内容。
func fakeCompletionServer(t *testing.T, status int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		choices := `[]`
		if reply != "" {
			b, _ := json.Marshal(reply)
			choices = `[{"index":0,"message":{"role":"assistant","content":` + string(b) + `},"finish_reason":"stop"}]`
		}
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":` + choices + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(sdk, baseURL string) config.LLMConfig {
	return config.LLMConfig{
		SDK:            sdk,
		APIKey:         "sk-test",
		BaseURL:        baseURL,
		Model:          "gpt-4o-mini",
		TimeoutSeconds: 5,
	}
}

func TestClient_CompleteSendsOnlyLatestMessage(t *testing.T) {
	for _, sdk := range []string{"openai", "langchain"} {
		t.Run(sdk, func(t *testing.T) {
			var captured capturedRequest
			srv := fakeCompletionServer(t, http.StatusOK, "hi there", &captured)

			client, err := NewClient(testConfig(sdk, srv.URL))
			require.NoError(t, err)

			reply, err := client.Complete(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, "hi there", reply)

			assert.Equal(t, "gpt-4o-mini", captured.Model)
			require.Len(t, captured.Messages, 1)
			assert.Equal(t, "user", captured.Messages[0].Role)
			assert.Equal(t, "hello", captured.Messages[0].Text())
		})
	}
}

func TestClient_SystemPromptAndGeneration(t *testing.T) {
	var captured capturedRequest
	srv := fakeCompletionServer(t, http.StatusOK, "ok", &captured)

	cfg := testConfig("openai", srv.URL)
	cfg.SystemPrompt = "You are a helpful assistant."
	cfg.Generation.Temperature = 0.2
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	require.NoError(t, err)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	require.NotNil(t, captured.Temperature)
	assert.InDelta(t, 0.2, *captured.Temperature, 1e-9)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	for _, sdk := range []string{"openai", "langchain"} {
		t.Run(sdk, func(t *testing.T) {
			srv := fakeCompletionServer(t, http.StatusInternalServerError, "", nil)

			client, err := NewClient(testConfig(sdk, srv.URL))
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), "hello")
			assert.Error(t, err)
		})
	}
}

func TestClient_EmptyChoices(t *testing.T) {
	srv := fakeCompletionServer(t, http.StatusOK, "", nil)

	client, err := NewClient(testConfig("openai", srv.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}

func TestClient_BlankContent(t *testing.T) {
	srv := fakeCompletionServer(t, http.StatusOK, "   ", nil)

	client, err := NewClient(testConfig("openai", srv.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(testConfig("openai", url))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello")
	assert.Error(t, err)
}

// slowServer 直到请求被取消或 wait 到期才返回。
func slowServer(t *testing.T, wait time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(wait):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ConfiguredTimeout(t *testing.T) {
	for _, sdk := range []string{"openai", "langchain"} {
		t.Run(sdk, func(t *testing.T) {
			srv := slowServer(t, 10*time.Second)

			cfg := testConfig(sdk, srv.URL)
			cfg.TimeoutSeconds = 1
			client, err := NewClient(cfg)
			require.NoError(t, err)

			start := time.Now()
			_, err = client.Complete(context.Background(), "hello")
			assert.Error(t, err)
			assert.Less(t, time.Since(start), 5*time.Second, "llm.timeout_seconds must bound the call")
		})
	}
}

func TestClient_CallerCancellation(t *testing.T) {
	srv := slowServer(t, 2*time.Second)

	client, err := NewClient(testConfig("openai", srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, "hello")
	assert.Error(t, err)
}

func TestNewClient_UnknownSDK(t *testing.T) {
	_, err := NewClient(testConfig("cohere", ""))
	assert.Error(t, err)
}
