// Package fetcher implements the per-URL fetch, validate, dedupe and save flow.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"image-fetcher/internal/models"
	"image-fetcher/internal/modules/dedupe"
	"image-fetcher/internal/modules/naming"
	"image-fetcher/internal/modules/pipeline"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Downloader fetches the body and headers of a URL.
type Downloader interface {
	Download(ctx context.Context, url string) models.Content
}

// Persister stores image bytes under a filename.
type Persister interface {
	Dir() string
	EnsureDir() error
	Save(filename string, data []byte) (string, error)
}

// Fetcher owns the seen-hash set for one run. Calls must be sequential.
type Fetcher struct {
	downloader Downloader
	persister  Persister
	seen       *dedupe.SeenHashes
	out        io.Writer
	logger     *zap.Logger
	pipeline   *pipeline.Pipeline
}

// New wires the stages. seen may be shared with other Fetchers used in the same run.
func New(dl Downloader, p Persister, seen *dedupe.SeenHashes, out io.Writer, logger *zap.Logger) *Fetcher {
	if seen == nil {
		seen = dedupe.NewSeenHashes()
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		downloader: dl,
		persister:  p,
		seen:       seen,
		out:        out,
		logger:     logger,
		pipeline:   pipeline.New(logger),
	}
	f.pipeline.AddStage(pipeline.StageFunc(f.ensureDir))
	f.pipeline.AddStage(pipeline.StageFunc(f.download))
	f.pipeline.AddStage(pipeline.StageFunc(validateImage))
	f.pipeline.AddStage(pipeline.StageFunc(deriveFilename))
	f.pipeline.AddStage(pipeline.StageFunc(f.checkDuplicate))
	f.pipeline.AddStage(pipeline.StageFunc(f.persist))
	return f
}

// Seen exposes the run's hash set.
func (f *Fetcher) Seen() *dedupe.SeenHashes {
	return f.seen
}

// FetchAndSave processes one URL and writes a console report for it.
// It never returns an error: every failure is captured in the Result.
func (f *Fetcher) FetchAndSave(ctx context.Context, url string) models.Result {
	job := &pipeline.Job{URL: url}
	err := f.pipeline.Run(ctx, job)

	res := models.Result{
		URL:      url,
		Outcome:  classify(err),
		Filename: job.Filename,
		Path:     job.Path,
		Hash:     job.Hash,
		Size:     len(job.Content.Data),
		Err:      err,
	}
	f.report(res)
	return res
}

func (f *Fetcher) ensureDir(ctx context.Context, job *pipeline.Job, logger *zap.Logger) error {
	if err := f.persister.EnsureDir(); err != nil {
		return &models.FilesystemError{Path: f.persister.Dir(), Err: err}
	}
	return nil
}

func (f *Fetcher) download(ctx context.Context, job *pipeline.Job, logger *zap.Logger) error {
	job.Content = f.downloader.Download(ctx, job.URL)
	return job.Content.Error
}

func validateImage(ctx context.Context, job *pipeline.Job, logger *zap.Logger) error {
	if !strings.HasPrefix(job.Content.ContentType, "image/") {
		logger.Debug("rejecting content type",
			zap.String("url", job.URL),
			zap.String("content_type", job.Content.ContentType))
		return models.ErrNotImage
	}
	return nil
}

func deriveFilename(ctx context.Context, job *pipeline.Job, logger *zap.Logger) error {
	job.Filename = naming.FromURL(job.URL, job.Content.ContentType)
	return nil
}

func (f *Fetcher) checkDuplicate(ctx context.Context, job *pipeline.Job, logger *zap.Logger) error {
	job.Hash = dedupe.Hash(job.Content.Data)
	if f.seen.Seen(job.Hash) {
		return models.ErrDuplicate
	}
	return nil
}

// persist marks the hash only once the write succeeded, so a failed write
// does not cause a later identical body to be reported as a duplicate.
func (f *Fetcher) persist(ctx context.Context, job *pipeline.Job, logger *zap.Logger) error {
	path, err := f.persister.Save(job.Filename, job.Content.Data)
	if err != nil {
		return &models.FilesystemError{Path: filepath.Join(f.persister.Dir(), job.Filename), Err: err}
	}
	job.Path = path
	f.seen.Mark(job.Hash)
	return nil
}

func classify(err error) models.Outcome {
	var fsErr *models.FilesystemError
	switch {
	case err == nil:
		return models.OutcomeSaved
	case errors.Is(err, models.ErrNotImage):
		return models.OutcomeNotImage
	case errors.Is(err, models.ErrDuplicate):
		return models.OutcomeDuplicate
	case models.IsNetwork(err):
		return models.OutcomeNetworkFailure
	case errors.As(err, &fsErr):
		return models.OutcomeFilesystemFailure
	default:
		return models.OutcomeUnexpected
	}
}

func (f *Fetcher) report(res models.Result) {
	switch res.Outcome {
	case models.OutcomeSaved:
		fmt.Fprintf(f.out, "✓ Successfully fetched: %s\n", res.Filename)
		fmt.Fprintf(f.out, "✓ Image saved to %s\n", res.Path)
		f.logger.Info("image saved",
			zap.String("url", res.URL),
			zap.String("path", res.Path),
			zap.String("sha256", res.Hash),
			zap.Int("bytes", res.Size))
	case models.OutcomeNotImage:
		fmt.Fprintf(f.out, "✗ Skipped (not an image): %s\n", res.URL)
	case models.OutcomeDuplicate:
		fmt.Fprintf(f.out, "✗ Duplicate skipped: %s\n", res.Filename)
		f.logger.Debug("duplicate content", zap.String("url", res.URL), zap.String("sha256", res.Hash))
	case models.OutcomeNetworkFailure:
		fmt.Fprintf(f.out, "✗ Connection error for %s: %v\n", res.URL, res.Err)
		f.logger.Warn("fetch failed", zap.String("url", res.URL), zap.Error(res.Err))
	default:
		fmt.Fprintf(f.out, "✗ An error occurred with %s: %v\n", res.URL, res.Err)
		f.logger.Error("processing failed",
			zap.String("url", res.URL),
			zap.Stringer("outcome", res.Outcome),
			zap.Error(res.Err))
	}
}
