package api

import (
	"context"
	"errors"
	"net/http"

	"RateBot/internal/domain/models"
	xhttp "RateBot/pkg/http"
	xlogger "RateBot/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// Dispatcher receives verified text commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd models.InboundCommand) bool
}

// QueueStatus is the part of the job queue the health probe reports on.
type QueueStatus interface {
	Backend() string
	Running() bool
}

// WebhookEchoHandler serves the LINE webhook and the liveness probe.
type WebhookEchoHandler struct {
	logger     *xlogger.Logger
	secret     string
	dispatcher Dispatcher
	queue      QueueStatus
}

func NewWebhookEchoHandler(logger *xlogger.Logger, channelSecret string, dispatcher Dispatcher, queue QueueStatus) *WebhookEchoHandler {
	return &WebhookEchoHandler{
		logger:     logger,
		secret:     channelSecret,
		dispatcher: dispatcher,
		queue:      queue,
	}
}

func (h *WebhookEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/callback", h.Callback)
	e.GET("/healthz", h.Health)
}

// Callback verifies X-Line-Signature and forwards text messages to the dispatcher.
func (h *WebhookEchoHandler) Callback(c echo.Context) error {
	cb, err := webhook.ParseRequest(h.secret, c.Request())
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("webhook signature rejected", xlogger.String("remote", c.RealIP()))
			return xhttp.AppErrorResponse(c, xhttp.InvalidSignatureError())
		}
		h.logger.Warn("webhook body rejected", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("malformed webhook body").WithError(err))
	}

	ctx := c.Request().Context()
	for _, event := range cb.Events {
		cmd, ok := textCommand(event)
		if !ok {
			continue
		}
		h.dispatcher.Dispatch(ctx, cmd)
	}

	return xhttp.OKText(c)
}

// Health reports liveness and the queue state.
func (h *WebhookEchoHandler) Health(c echo.Context) error {
	status := xhttp.HealthStatus{Status: "ok"}
	if h.queue != nil {
		status.Queue = h.queue.Backend()
		if !h.queue.Running() {
			status.Status = "degraded"
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func textCommand(event webhook.EventInterface) (models.InboundCommand, bool) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		return models.InboundCommand{}, false
	}
	msg, ok := e.Message.(webhook.TextMessageContent)
	if !ok {
		return models.InboundCommand{}, false
	}

	var sender string
	switch s := e.Source.(type) {
	case webhook.UserSource:
		sender = s.UserId
	case webhook.GroupSource:
		sender = s.UserId
	case webhook.RoomSource:
		sender = s.UserId
	}
	if sender == "" {
		return models.InboundCommand{}, false
	}

	return models.InboundCommand{
		RawText:    msg.Text,
		SenderID:   sender,
		ReplyToken: e.ReplyToken,
	}, true
}
