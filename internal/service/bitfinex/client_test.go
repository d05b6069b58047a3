package bitfinex_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"RateBot/internal/domain/models"
	"RateBot/internal/service/bitfinex"

	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/trades/fUSD/hist" || r.URL.Query().Get("limit") != "1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func usd() models.Instrument {
	return models.DefaultInstruments()[0]
}

func TestFetchLatest(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusOK, `[[396453208,1700000000000,-150.5,0.0001,2]]`)
	client := bitfinex.New(bitfinex.WithBaseURL(srv.URL))

	got, err := client.FetchLatest(context.Background(), usd())
	require.NoError(t, err)
	require.Equal(t, "0.01", got.String())

	q := models.NewRateQuote(usd(), got)
	require.Equal(t, "0.0100%", q.DailyText())
	require.Equal(t, "3.65%", q.APRText())
}

func TestFetchLatestFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		status int
		body   string
	}{
		"server error":   {http.StatusInternalServerError, `["error",10020,"oops"]`},
		"malformed json": {http.StatusOK, `[[1,2`},
		"empty array":    {http.StatusOK, `[]`},
		"short row":      {http.StatusOK, `[[1,2,3]]`},
		"non numeric":    {http.StatusOK, `[[1,2,3,"abc",2]]`},
		"error payload":  {http.StatusOK, `["error",10020,"symbol: invalid"]`},
		"null rate":      {http.StatusOK, `[[1,2,3,null,2]]`},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t, tc.status, tc.body)
			client := bitfinex.New(bitfinex.WithBaseURL(srv.URL))

			_, err := client.FetchLatest(context.Background(), usd())
			require.ErrorIs(t, err, models.ErrSourceUnavailable)
			require.Contains(t, err.Error(), "fUSD")
		})
	}
}

func TestFetchLatestTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := bitfinex.New(bitfinex.WithBaseURL(srv.URL), bitfinex.WithTimeout(50*time.Millisecond))
	_, err := client.FetchLatest(context.Background(), usd())
	require.ErrorIs(t, err, models.ErrSourceUnavailable)
}
