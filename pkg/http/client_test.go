package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xhttp "RateBot/pkg/http"

	"github.com/stretchr/testify/require"
)

func TestSendAndParseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ua":"` + r.UserAgent() + `","q":"` + r.URL.Query().Get("limit") +
			`","ct":"` + r.Header.Get("Content-Type") + `","body":` + string(body) + `}`))
	}))
	defer srv.Close()

	c := xhttp.NewClient(xhttp.WithUserAgent("ratebot-test"))

	var got struct {
		UA   string            `json:"ua"`
		Q    string            `json:"q"`
		CT   string            `json:"ct"`
		Body map[string]string `json:"body"`
	}
	err := c.SendAndParse(context.Background(), &xhttp.RequestOptions{
		Method:      xhttp.MethodPost,
		URL:         srv.URL,
		QueryParams: map[string][]string{"limit": {"1"}},
		Body:        map[string]string{"k": "v"},
	}, &got)
	require.NoError(t, err)
	require.Equal(t, "ratebot-test", got.UA)
	require.Equal(t, "1", got.Q)
	require.Equal(t, "application/json", got.CT)
	require.Equal(t, map[string]string{"k": "v"}, got.Body)
}

func TestSendAndParseRawAndWriter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("raw-bytes"))
	}))
	defer srv.Close()

	c := xhttp.NewClient()

	b, err := c.GetBytes(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Equal(t, "raw-bytes", string(b))

	var buf bytes.Buffer
	require.NoError(t, c.SendAndParse(context.Background(), &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: srv.URL}, &buf))
	require.Equal(t, "raw-bytes", buf.String())
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"ratelimit"}`))
	}))
	defer srv.Close()

	_, err := xhttp.NewClient().GetBytes(context.Background(), srv.URL, nil)
	var serr *xhttp.StatusError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, http.StatusTooManyRequests, serr.StatusCode)
	require.Contains(t, serr.Error(), "ratelimit")
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := xhttp.NewClient(xhttp.WithTimeout(50 * time.Millisecond))
	_, err := c.GetBytes(context.Background(), srv.URL, nil)
	require.Error(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClientUsesCustomTransport(t *testing.T) {
	var gotURL string
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"image/png"}},
			Body:       io.NopCloser(bytes.NewReader([]byte("icon"))),
			Request:    r,
		}, nil
	})

	c := xhttp.NewClient(xhttp.WithTransport(rt))
	b, err := c.GetBytes(context.Background(), "https://icons.example/usd.png", nil)
	require.NoError(t, err)
	require.Equal(t, []byte("icon"), b)
	require.Equal(t, "https://icons.example/usd.png", gotURL)
}
