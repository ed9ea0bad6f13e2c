package downloader

import (
	"context"
	"fmt"
	"image-fetcher/internal/models"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "UbuntuImageFetcher/1.0"
)

// Downloader issues a single GET per URL. It never retries.
type Downloader struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the whole-request timeout, body read included.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) { dl.timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) { dl.userAgent = ua }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(dl *Downloader) { dl.logger = l }
}

// New creates a Downloader with a 10 second timeout and the default user agent.
func New(opts ...Option) *Downloader {
	dl := &Downloader{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(dl)
	}
	dl.client = &http.Client{Timeout: dl.timeout}
	return dl
}

// Download fetches url and reads the whole body.
func (d *Downloader) Download(ctx context.Context, url string) models.Content {
	d.logger.Debug("downloading", zap.String("url", url), zap.Duration("timeout", d.timeout))
	content := downloadURL(ctx, d.client, d.userAgent, url)
	if content.Error != nil {
		d.logger.Debug("download failed", zap.String("url", url), zap.Error(content.Error))
	} else {
		d.logger.Debug("downloaded",
			zap.String("url", url),
			zap.Int("status", content.StatusCode),
			zap.String("content_type", content.ContentType),
			zap.Int("bytes", len(content.Data)),
			zap.Duration("duration", content.Duration))
	}
	return content
}

func downloadURL(ctx context.Context, client *http.Client, userAgent, url string) models.Content {
	start := time.Now()
	result := func(c models.Content) models.Content {
		c.Duration = time.Since(start)
		return c
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result(models.Content{Error: &models.NetworkError{URL: url, Err: err}})
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return result(models.Content{Error: &models.NetworkError{URL: url, Err: err}})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result(models.Content{
			StatusCode: resp.StatusCode,
			Error:      &models.StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status},
		})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return result(models.Content{
			StatusCode: resp.StatusCode,
			Error:      &models.NetworkError{URL: url, Err: fmt.Errorf("read failed: %w", err)},
		})
	}

	return result(models.Content{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	})
}
