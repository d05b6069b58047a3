package icon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"RateBot/internal/domain/models"
	"RateBot/internal/domain/repository"
	"RateBot/pkg/cache"
	xhttp "RateBot/pkg/http"
	"RateBot/pkg/logger"
	"RateBot/pkg/metrics"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	// registers image.Decode support for webp icons
	_ "golang.org/x/image/webp"
)

const (
	DefaultSize      = 120
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "Mozilla/5.0"
)

// PlaceholderColor fills icons that could not be loaded.
var PlaceholderColor = color.NRGBA{R: 200, G: 200, B: 200, A: 60}

// Resolver downloads instrument icons and normalizes them to a fixed square size.
type Resolver struct {
	http     *xhttp.Client
	size     int
	timeout  time.Duration
	ua       string
	cache    cache.BytesCache
	cacheTTL time.Duration
	group    singleflight.Group
	log      *logger.Logger
	metrics  repository.Metrics
}

// Option configures Resolver.
type Option func(*Resolver)

// WithSize sets the output edge length in pixels.
func WithSize(px int) Option {
	return func(r *Resolver) {
		if px > 0 {
			r.size = px
		}
	}
}

// WithTimeout bounds each download.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithUserAgent sets the User-Agent header; some CDNs reject the Go default.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.ua = ua
	}
}

// WithCache stores successfully downloaded bytes for ttl.
func WithCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(r *Resolver) {
		r.http = h
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates an icon resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		size:    DefaultSize,
		timeout: DefaultTimeout,
		ua:      DefaultUserAgent,
		log:     logger.Nop(),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.http == nil {
		r.http = xhttp.NewClient(xhttp.WithTimeout(r.timeout), xhttp.WithUserAgent(r.ua))
	}
	return r
}

// Size returns the edge length of every icon produced.
func (r *Resolver) Size() int { return r.size }

// Resolve returns the icon at url scaled to Size()×Size(), or a placeholder
// of the same size when it cannot be loaded.
func (r *Resolver) Resolve(ctx context.Context, name, url string) image.Image {
	img, err := r.load(ctx, url)
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", models.ErrIconUnavailable, name, err)
		r.log.Warn("icon fallback to placeholder",
			logger.String("name", name),
			logger.String("url", url),
			logger.Error(err))
		r.metrics.RecordError("icon_unavailable")
		return Placeholder(r.size)
	}
	return img
}

// Placeholder returns a flat translucent grey square.
func Placeholder(size int) *image.NRGBA {
	return imaging.New(size, size, PlaceholderColor)
}

func (r *Resolver) load(ctx context.Context, url string) (image.Image, error) {
	raw, err := r.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		if r.cache != nil {
			_ = r.cache.Delete(ctx, cacheKey(url))
		}
		return nil, fmt.Errorf("decode: %w", err)
	}

	return imaging.Resize(img, r.size, r.size, imaging.Lanczos), nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	key := cacheKey(url)
	if r.cache != nil {
		b, err := r.cache.GetBytes(ctx, key)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.log.Debug("icon cache read failed", logger.Error(err))
		}
	}

	v, err, _ := r.group.Do(url, func() (interface{}, error) {
		dctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		b, err := r.http.GetBytes(dctx, url, nil)
		if err != nil {
			return nil, err
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("empty body")
		}
		if r.cache != nil {
			if err := r.cache.SetBytes(ctx, key, b, r.cacheTTL); err != nil {
				r.log.Debug("icon cache write failed", logger.Error(err))
			}
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func cacheKey(url string) string {
	return cache.GenerateKey("icon", cache.HashKey(url))
}
