package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// FilePersister writes fetched images into a single directory.
type FilePersister struct {
	downloadDir string // Directory where images are saved
	logger      *zap.Logger
}

const DefaultDownloadDir = "Fetched_Images" // Default directory for saving images, relative to the working directory

// New creates a new FilePersister instance with an optional custom directory.
//
// Parameters:
//   - logger: Logger for write events.
//   - downloadDir: Optional variadic parameter for the directory path. Uses DefaultDownloadDir if not provided.
//
// Returns:
//   - A pointer to a new FilePersister instance.
func New(logger *zap.Logger, downloadDir ...string) *FilePersister {
	dir := DefaultDownloadDir
	if len(downloadDir) > 0 && downloadDir[0] != "" {
		dir = downloadDir[0]
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilePersister{downloadDir: dir, logger: logger}
}

// Dir returns the target directory.
func (fp *FilePersister) Dir() string {
	return fp.downloadDir
}

// EnsureDir creates the target directory and any missing parents.
func (fp *FilePersister) EnsureDir() error {
	if err := os.MkdirAll(fp.downloadDir, 0755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	return nil
}

// Save writes data to <dir>/<filename>, replacing any existing file of that name.
//
// Returns:
//   - The full path written.
//   - An error if the write fails.
func (fp *FilePersister) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(fp.downloadDir, filename)

	fp.logger.Debug("persisting file",
		zap.String("filepath", path),
		zap.String("size", humanize.Bytes(uint64(len(data)))))
	if err := os.WriteFile(path, data, 0644); err != nil {
		fp.logger.Warn("persist failed",
			zap.String("filepath", path),
			zap.Error(err))
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
