package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"RateBot/internal/domain/models"
	"RateBot/pkg/logger"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	DefaultTimeout = 30 * time.Second
	publicIDPrefix = "rates-"
)

// Publisher uploads rendered reports to Cloudinary and returns their HTTPS URL.
type Publisher struct {
	client  *cld.Cloudinary
	folder  string
	timeout time.Duration
	log     *logger.Logger
}

// Option configures Publisher.
type Option func(*Publisher)

// WithFolder places uploads under folder.
func WithFolder(folder string) Option {
	return func(p *Publisher) {
		p.folder = folder
	}
}

// WithTimeout bounds a single upload.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithUploadPrefix overrides the upload API host.
func WithUploadPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.client.Config.API.UploadPrefix = prefix
		p.client.Upload.Config.API.UploadPrefix = prefix
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(p *Publisher) {
		p.log = l
	}
}

// NewPublisher creates a publisher for the given account credentials.
func NewPublisher(cloudName, apiKey, apiSecret string, opts ...Option) (*Publisher, error) {
	client, err := cld.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	client.Config.URL.Secure = true
	client.Upload.Config.URL.Secure = true

	p := &Publisher{
		client:  client,
		timeout: DefaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish uploads the PNG. Identical artifacts map to the same public id and
// overwrite each other. Every failure is a *models.PublishError.
func (p *Publisher) Publish(ctx context.Context, artifact *models.ReportArtifact) (models.PublishedArtifactRef, error) {
	if artifact == nil || len(artifact.PNG) == 0 {
		return models.PublishedArtifactRef{}, &models.PublishError{Op: "upload", Err: errors.New("empty artifact")}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := uploader.UploadParams{
		PublicID:     publicIDPrefix + artifact.HashHex(),
		Folder:       p.folder,
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	}

	resp, err := p.client.Upload.Upload(ctx, bytes.NewReader(artifact.PNG), params)
	if err != nil {
		return models.PublishedArtifactRef{}, &models.PublishError{Op: "upload", Err: err}
	}
	if resp.Error.Message != "" {
		return models.PublishedArtifactRef{}, &models.PublishError{Op: "upload", Err: errors.New(resp.Error.Message)}
	}
	if resp.SecureURL == "" {
		return models.PublishedArtifactRef{}, &models.PublishError{Op: "upload", Err: errors.New("no secure url in response")}
	}

	p.log.Debug("artifact published",
		logger.String("public_id", resp.PublicID),
		logger.String("url", resp.SecureURL))
	return models.PublishedArtifactRef{URL: resp.SecureURL}, nil
}
