package filereader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Prompt is shown before reading the interactive URL line.
const Prompt = "Please enter one or more image URLs (separated by space): "

// ReadLine writes prompt to w and splits the next line of r on whitespace.
// A missing trailing newline or an empty input is not an error.
func ReadLine(ctx context.Context, r io.Reader, w io.Writer, logger *zap.Logger) ([]string, error) {
	if w != nil {
		fmt.Fprint(w, Prompt)
	}

	type lineResult struct {
		line string
		err  error
	}
	done := make(chan lineResult, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		done <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Warn("prompt interrupted", zap.Error(ctx.Err()))
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("read urls: %w", res.err)
		}
		urls := strings.Fields(res.line)
		logger.Debug("read URLs from prompt", zap.Int("total_urls", len(urls)))
		return urls, nil
	}
}

// FileReader reads URLs from a text file, one or more per line.
// Blank lines and lines starting with '#' are ignored.
type FileReader struct {
	path string
}

// New creates a new FileReader
func New(path string) *FileReader {
	return &FileReader{path: path}
}

func (fr *FileReader) ReadURLs(ctx context.Context, logger *zap.Logger) ([]string, error) {
	file, err := os.Open(fr.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var urls []string

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			logger.Warn("file reading interrupted", zap.Error(ctx.Err()))
			return nil, ctx.Err()
		default:
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			for _, url := range strings.Fields(line) {
				logger.Debug("read URL", zap.String("url", url))
				urls = append(urls, url)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	logger.Info("finished reading URLs", zap.String("path", fr.path), zap.Int("total_urls", len(urls)))
	return urls, nil
}
