package line

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

const DefaultTimeout = 10 * time.Second

// Messenger sends replies and pushes through the LINE Messaging API.
type Messenger struct {
	api *messaging_api.MessagingApiAPI
}

type options struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// Option configures Messenger.
type Option func(*options)

// WithEndpoint overrides the API host, e.g. a test server.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithTimeout bounds each API call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client; WithTimeout is then ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// NewMessenger creates a LINE messenger for the channel access token.
func NewMessenger(accessToken string, opts ...Option) (*Messenger, error) {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: o.timeout}
	}

	apiOpts := []messaging_api.MessagingApiAPIOption{messaging_api.WithHTTPClient(o.client)}
	if o.endpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(o.endpoint))
	}

	api, err := messaging_api.NewMessagingApiAPI(accessToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("create line client: %w", err)
	}
	return &Messenger{api: api}, nil
}

// ReplyText answers the event identified by replyToken.
func (m *Messenger) ReplyText(ctx context.Context, replyToken, text string) error {
	_, err := m.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}

// PushText sends text to a user without a reply token.
func (m *Messenger) PushText(ctx context.Context, to, text string) error {
	return m.push(ctx, to, messaging_api.TextMessage{Text: text})
}

// PushImage sends an image by URL; the same URL serves as preview.
func (m *Messenger) PushImage(ctx context.Context, to, imageURL string) error {
	return m.push(ctx, to, messaging_api.ImageMessage{
		OriginalContentUrl: imageURL,
		PreviewImageUrl:    imageURL,
	})
}

func (m *Messenger) push(ctx context.Context, to string, msg messaging_api.MessageInterface) error {
	_, err := m.api.WithContext(ctx).PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: []messaging_api.MessageInterface{msg},
	}, "")
	if err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	return nil
}
