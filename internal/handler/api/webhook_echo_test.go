package api_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"RateBot/internal/domain/models"
	"RateBot/internal/handler/api"
	"RateBot/internal/usecase"
	"RateBot/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const secret = "channel-secret"

type fakeAcceptor struct {
	mu   sync.Mutex
	cmds []models.InboundCommand
}

func (a *fakeAcceptor) Accept(_ context.Context, cmd models.InboundCommand) usecase.RunState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cmds = append(a.cmds, cmd)
	return usecase.StateAcknowledged
}

type fakeQueue struct {
	running bool
}

func (q fakeQueue) Backend() string { return "memory" }
func (q fakeQueue) Running() bool   { return q.running }

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func textEvent(text, userID string) string {
	return fmt.Sprintf(`{
		"destination": "Ubot",
		"events": [{
			"type": "message",
			"mode": "active",
			"timestamp": 1700000000000,
			"webhookEventId": "01H",
			"deliveryContext": {"isRedelivery": false},
			"replyToken": "reply-token",
			"source": {"type": "user", "userId": %q},
			"message": {"type": "text", "id": "1", "quoteToken": "q", "text": %q}
		}]
	}`, userID, text)
}

func newEcho(acceptor *fakeAcceptor, q api.QueueStatus) *echo.Echo {
	d := usecase.NewCommandDispatcher("利率", acceptor, logger.Nop())
	h := api.NewWebhookEchoHandler(logger.Nop(), secret, d, q)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func post(e *echo.Echo, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Line-Signature", signature)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCallbackDispatchesTrigger(t *testing.T) {
	acceptor := &fakeAcceptor{}
	e := newEcho(acceptor, nil)

	body := textEvent("今日利率?", "U1")
	rec := post(e, body, sign(body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
	require.Equal(t, []models.InboundCommand{{
		RawText:    "今日利率?",
		SenderID:   "U1",
		ReplyToken: "reply-token",
	}}, acceptor.cmds)
}

func TestCallbackIgnoresOtherText(t *testing.T) {
	acceptor := &fakeAcceptor{}
	e := newEcho(acceptor, nil)

	body := textEvent("hello", "U1")
	rec := post(e, body, sign(body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, acceptor.cmds)
}

func TestCallbackRejectsBadSignature(t *testing.T) {
	acceptor := &fakeAcceptor{}
	e := newEcho(acceptor, nil)

	body := textEvent("利率", "U1")
	rec := post(e, body, sign(body+"tampered"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "ERR_INVALID_SIGNATURE")
	require.Empty(t, acceptor.cmds)
}

func TestCallbackAcceptsEmptyVerification(t *testing.T) {
	acceptor := &fakeAcceptor{}
	e := newEcho(acceptor, nil)

	body := `{"destination":"Ubot","events":[]}`
	rec := post(e, body, sign(body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, acceptor.cmds)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		running bool
		code    int
		status  string
	}{
		{name: "running", running: true, code: http.StatusOK, status: `"status":"ok"`},
		{name: "stopped", running: false, code: http.StatusServiceUnavailable, status: `"status":"degraded"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(&fakeAcceptor{}, fakeQueue{running: tt.running})

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			require.Contains(t, rec.Body.String(), tt.status)
			require.Contains(t, rec.Body.String(), `"queue":"memory"`)
		})
	}
}
