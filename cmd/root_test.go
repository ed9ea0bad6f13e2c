package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image-fetcher/internal/models"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cat.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("cat"))
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("hello"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	root := NewRootCmd(context.Background(), zaptest.NewLogger(t), level)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_FromPrompt(t *testing.T) {
	ts := newServer(t)
	dir := filepath.Join(t.TempDir(), "out")

	line := strings.Join([]string{ts.URL + "/cat.jpg", ts.URL + "/cat.jpg", ts.URL + "/notes.txt"}, " ")
	stdout, _, err := execute(t, line+"\n", "--dir", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "cat.jpg")
	want := "Welcome to the Ubuntu Image Fetcher\n" +
		"A tool for mindfully collecting images from the web\n\n" +
		"Please enter one or more image URLs (separated by space): " +
		"✓ Successfully fetched: cat.jpg\n" +
		"✓ Image saved to " + path + "\n" +
		"✗ Duplicate skipped: cat.jpg\n" +
		"✗ Skipped (not an image): " + ts.URL + "/notes.txt\n" +
		"\nConnection strengthened. Community enriched.\n"
	assert.Equal(t, want, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cat", string(data))
}

func TestRun_NoURLs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	stdout, _, err := execute(t, "   \n", "--dir", dir)

	assert.ErrorIs(t, err, models.ErrNoURLs)
	assert.True(t, strings.HasSuffix(stdout, "✗ No URLs provided.\n"), stdout)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ArgsSkipPrompt(t *testing.T) {
	ts := newServer(t)
	dir := t.TempDir()

	stdout, _, err := execute(t, "", "--dir", dir, ts.URL+"/missing.png", ts.URL+"/cat.jpg")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "Please enter")
	assert.Contains(t, stdout, "✗ Connection error for "+ts.URL+"/missing.png: ")
	assert.Contains(t, stdout, "✓ Successfully fetched: cat.jpg\n")
}

func TestRun_FromFileWithConfig(t *testing.T) {
	ts := newServer(t)
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "from-config")

	urlFile := filepath.Join(tmp, "urls.txt")
	require.NoError(t, os.WriteFile(urlFile, []byte("# one\n"+ts.URL+"/cat.jpg\n"), 0644))
	cfgFile := filepath.Join(tmp, "fetcher.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`save_dir = "`+filepath.ToSlash(dir)+`"`+"\n"), 0644))

	stdout, stderr, err := execute(t, "", "--config", cfgFile, "--file", urlFile, "--progress")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ Image saved to "+filepath.Join(dir, "cat.jpg"))
	assert.NotEmpty(t, stderr)
	_, err = os.Stat(filepath.Join(dir, "cat.jpg"))
	assert.NoError(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "", "--timeout", "0s", "http://example.com/a.png")
	assert.ErrorContains(t, err, "timeout must be positive")
}

func TestRun_VerboseRaisesLevel(t *testing.T) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	root := NewRootCmd(context.Background(), zaptest.NewLogger(t), level)
	root.SetArgs([]string{"--verbose", "--dir", t.TempDir()})
	root.SetIn(strings.NewReader(""))
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	assert.ErrorIs(t, err, models.ErrNoURLs)
	assert.Equal(t, zap.DebugLevel, level.Level())
}

func TestRun_CanceledContext(t *testing.T) {
	ts := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := NewRootCmd(ctx, zaptest.NewLogger(t), zap.NewAtomicLevel())
	root.SetArgs([]string{"--dir", t.TempDir(), ts.URL + "/cat.jpg"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_MissingConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "typo.toml")
	_, _, err := execute(t, "", "--config", missing, "http://example.com/a.png")

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "typo.toml")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantErrors int
	}{
		{"success", nil, 0, 0},
		{"interrupted", fmt.Errorf("run: %w", context.Canceled), 130, 0},
		{"no urls", models.ErrNoURLs, 1, 0},
		{"config failure", errors.New("timeout must be positive"), 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			code := exitCode(tt.err, zap.New(core))

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErrors, logs.FilterLevelExact(zap.ErrorLevel).Len())
		})
	}
}

func TestTally(t *testing.T) {
	tl := newTally()
	tl.add(models.Result{Outcome: models.OutcomeSaved, Size: 1024})
	tl.add(models.Result{Outcome: models.OutcomeDuplicate, Size: 1024})
	tl.add(models.Result{Outcome: models.OutcomeNotImage, Size: 10})
	tl.add(models.Result{Outcome: models.OutcomeNetworkFailure})
	tl.add(models.Result{Outcome: models.OutcomeFilesystemFailure, Size: 99})

	assert.Equal(t, 1, tl.counts[models.OutcomeSaved])
	assert.Equal(t, 2, tl.skipped)
	assert.Equal(t, 2, tl.failed)
	assert.Equal(t, uint64(1024), tl.bytes)

	core, logs := observer.New(zap.InfoLevel)
	tl.log(zap.New(core))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(2), fields["skipped"])
	assert.Equal(t, "1.0 kB", fields["saved_bytes"])
}
