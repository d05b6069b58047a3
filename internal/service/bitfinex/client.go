package bitfinex

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"RateBot/internal/domain/models"
	xhttp "RateBot/pkg/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://api-pub.bitfinex.com"
	DefaultTimeout = 5 * time.Second

	// funding trade row: [ID, MTS, AMOUNT, RATE, PERIOD]
	rateIndex = 3
)

var (
	json    = jsoniter.ConfigCompatibleWithStandardLibrary
	hundred = decimal.NewFromInt(100)
)

// Client reads the most recent funding trade from the Bitfinex public REST API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *xhttp.Client
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a Bitfinex quote source.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout))
	}
	return c
}

// FetchLatest returns the daily rate in percent of the latest funding trade.
// Any failure is wrapped in models.ErrSourceUnavailable.
func (c *Client) FetchLatest(ctx context.Context, inst models.Instrument) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v2/trades/%s/hist", c.baseURL, url.PathEscape(inst.ID))
	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         endpoint,
		QueryParams: map[string][]string{"limit": {"1"}},
	}, &body)
	if err != nil {
		return decimal.Decimal{}, unavailable(inst, err)
	}

	raw, err := parseRate(body)
	if err != nil {
		return decimal.Decimal{}, unavailable(inst, err)
	}

	return raw.Mul(hundred), nil
}

func parseRate(body []byte) (decimal.Decimal, error) {
	var rows [][]decimal.NullDecimal
	if err := json.Unmarshal(body, &rows); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode trades: %w", err)
	}
	if len(rows) == 0 {
		return decimal.Decimal{}, fmt.Errorf("no trades")
	}
	if len(rows[0]) <= rateIndex {
		return decimal.Decimal{}, fmt.Errorf("short trade row: %d fields", len(rows[0]))
	}
	rate := rows[0][rateIndex]
	if !rate.Valid {
		return decimal.Decimal{}, fmt.Errorf("missing rate")
	}
	return rate.Decimal, nil
}

func unavailable(inst models.Instrument, cause error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, inst.ID, cause)
}
