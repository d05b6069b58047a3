package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	xhttp "RateBot/pkg/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return xhttp.OKText(c) })
	e.GET("/panic", func(c echo.Context) error { panic("boom") })
	e.GET("/bad", func(c echo.Context) error {
		return xhttp.AppErrorResponse(c, xhttp.InvalidSignatureError())
	})
}

func serve(s *xhttp.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerRoutesAndMiddleware(t *testing.T) {
	s := xhttp.NewServer([]xhttp.Handler{routes{}})

	rec := serve(s, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())

	rec = serve(s, "/panic")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Internal Server Error")

	rec = serve(s, "/bad")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "ERR_INVALID_SIGNATURE")

	rec = serve(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ratebot_http_requests_total")
}

func TestServerMetricsPathDisabled(t *testing.T) {
	s := xhttp.NewServer(nil, xhttp.WithMetricsPath(""))
	require.Equal(t, http.StatusNotFound, serve(s, "/metrics").Code)
}
