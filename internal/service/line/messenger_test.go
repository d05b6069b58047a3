package line_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"RateBot/internal/service/line"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type captured struct {
	path  string
	auth  string
	body  map[string]interface{}
	calls int
}

func newLineServer(t *testing.T, status int) (*httptest.Server, *captured, *sync.Mutex) {
	t.Helper()
	var (
		mu  sync.Mutex
		got captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.body = map[string]interface{}{}
		_ = json.Unmarshal(b, &got.body)
		got.calls++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"sentMessages":[{"id":"1","quoteToken":"q"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &got, &mu
}

func firstMessage(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	msgs, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg, ok := msgs[0].(map[string]interface{})
	require.True(t, ok)
	return msg
}

func TestReplyText(t *testing.T) {
	srv, got, mu := newLineServer(t, http.StatusOK)
	m, err := line.NewMessenger("token", line.WithEndpoint(srv.URL))
	require.NoError(t, err)

	require.NoError(t, m.ReplyText(context.Background(), "reply-token", "hello"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/v2/bot/message/reply", got.path)
	require.Equal(t, "Bearer token", got.auth)
	require.Equal(t, "reply-token", got.body["replyToken"])
	msg := firstMessage(t, got.body)
	require.Equal(t, "text", msg["type"])
	require.Equal(t, "hello", msg["text"])
}

func TestPushImage(t *testing.T) {
	srv, got, mu := newLineServer(t, http.StatusOK)
	m, err := line.NewMessenger("token", line.WithEndpoint(srv.URL))
	require.NoError(t, err)

	require.NoError(t, m.PushImage(context.Background(), "U1", "https://cdn.example/r.png"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/v2/bot/message/push", got.path)
	require.Equal(t, "U1", got.body["to"])
	msg := firstMessage(t, got.body)
	require.Equal(t, "image", msg["type"])
	require.Equal(t, "https://cdn.example/r.png", msg["originalContentUrl"])
	require.Equal(t, "https://cdn.example/r.png", msg["previewImageUrl"])
}

func TestPushTextRejected(t *testing.T) {
	srv, got, mu := newLineServer(t, http.StatusBadRequest)
	m, err := line.NewMessenger("token", line.WithEndpoint(srv.URL))
	require.NoError(t, err)

	require.Error(t, m.PushText(context.Background(), "U1", "boom"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, got.calls)
}
