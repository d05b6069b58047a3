package icon

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"RateBot/pkg/cache"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func iconServer(t *testing.T, hits *int32, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func requirePlaceholder(t *testing.T, img image.Image, size int) {
	t.Helper()
	require.Equal(t, image.Rect(0, 0, size, size), img.Bounds())
	require.Equal(t, PlaceholderColor, color.NRGBAModel.Convert(img.At(size/2, size/2)))
}

func TestResolveScalesIcon(t *testing.T) {
	var hits int32
	red := color.NRGBA{R: 255, A: 255}
	srv := iconServer(t, &hits, pngBytes(t, 32, 16, red), http.StatusOK)

	r := NewResolver()
	img := r.Resolve(context.Background(), "USD", srv.URL+"/usd.png")

	require.Equal(t, image.Rect(0, 0, 120, 120), img.Bounds())
	px := color.NRGBAModel.Convert(img.At(60, 60)).(color.NRGBA)
	require.InDelta(t, red.R, px.R, 2)
	require.InDelta(t, 0, px.G, 2)
	require.InDelta(t, red.A, px.A, 2)
}

func TestResolveFallsBackToPlaceholder(t *testing.T) {
	var hits int32
	notFound := iconServer(t, &hits, []byte("missing"), http.StatusNotFound)
	garbage := iconServer(t, &hits, []byte("definitely not an image"), http.StatusOK)

	r := NewResolver(WithSize(64))
	requirePlaceholder(t, r.Resolve(context.Background(), "USD", notFound.URL), 64)
	requirePlaceholder(t, r.Resolve(context.Background(), "EUR", garbage.URL), 64)
	requirePlaceholder(t, r.Resolve(context.Background(), "BTC", "http://127.0.0.1:1/btc.png"), 64)
}

func TestResolveTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(WithTimeout(50 * time.Millisecond))
	requirePlaceholder(t, r.Resolve(context.Background(), "ETH", srv.URL), DefaultSize)
}

func TestResolveUsesCache(t *testing.T) {
	var hits int32
	blue := color.NRGBA{B: 255, A: 255}
	srv := iconServer(t, &hits, pngBytes(t, 8, 8, blue), http.StatusOK)

	mc := cache.NewMemoryCache()
	defer mc.Close()

	r := NewResolver(WithCache(mc, time.Hour))
	url := srv.URL + "/eth.png"

	first := r.Resolve(context.Background(), "ETH", url)
	second := r.Resolve(context.Background(), "ETH", url)

	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
	require.Equal(t, first, second)

	_, err := mc.GetBytes(context.Background(), cacheKey(url))
	require.NoError(t, err)
}

func TestResolveDoesNotCacheFailures(t *testing.T) {
	var hits int32
	srv := iconServer(t, &hits, nil, http.StatusInternalServerError)

	mc := cache.NewMemoryCache()
	defer mc.Close()

	r := NewResolver(WithCache(mc, time.Hour))
	r.Resolve(context.Background(), "XAUT", srv.URL)
	r.Resolve(context.Background(), "XAUT", srv.URL)

	require.EqualValues(t, 2, atomic.LoadInt32(&hits))
	require.Equal(t, 0, mc.Len())
}
