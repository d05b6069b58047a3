package cloudinary_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"RateBot/internal/domain/models"
	"RateBot/internal/service/cloudinary"

	"github.com/stretchr/testify/require"
)

func uploadServer(t *testing.T, status int, body string) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu        sync.Mutex
		publicIDs []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/upload") {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		publicIDs = append(publicIDs, r.FormValue("public_id"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), publicIDs...)
	}
}

func artifact() *models.ReportArtifact {
	return &models.ReportArtifact{PNG: []byte("\x89PNG fake"), Hash: 0xabc}
}

func TestPublishReturnsSecureURL(t *testing.T) {
	srv, ids := uploadServer(t, http.StatusOK,
		`{"public_id":"rates-0000000000000abc","secure_url":"https://res.cloudinary.com/demo/image/upload/rates-0000000000000abc.png"}`)

	p, err := cloudinary.NewPublisher("demo", "key", "secret", cloudinary.WithUploadPrefix(srv.URL))
	require.NoError(t, err)

	ref, err := p.Publish(context.Background(), artifact())
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/rates-0000000000000abc.png", ref.URL)
	require.Contains(t, ids(), "rates-0000000000000abc")
}

func TestPublishFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{name: "api error payload", status: http.StatusBadRequest, body: `{"error":{"message":"Invalid Signature"}}`, errMsg: "Invalid Signature"},
		{name: "no secure url", status: http.StatusOK, body: `{"public_id":"x"}`, errMsg: "no secure url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ids := uploadServer(t, tt.status, tt.body)
			p, err := cloudinary.NewPublisher("demo", "key", "secret", cloudinary.WithUploadPrefix(srv.URL))
			require.NoError(t, err)

			_, err = p.Publish(context.Background(), artifact())
			var perr *models.PublishError
			require.True(t, errors.As(err, &perr))
			require.Equal(t, "upload", perr.Op)
			require.Contains(t, err.Error(), tt.errMsg)
			require.Len(t, ids(), 1)
		})
	}
}

func TestPublishEmptyArtifact(t *testing.T) {
	p, err := cloudinary.NewPublisher("demo", "key", "secret")
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), &models.ReportArtifact{})
	var perr *models.PublishError
	require.True(t, errors.As(err, &perr))
}
