package cmd

import (
	"context"
	"errors"
	"fmt"
	"image-fetcher/internal/config"
	"image-fetcher/internal/models"
	"image-fetcher/internal/modules/dedupe"
	"image-fetcher/internal/modules/downloader"
	"image-fetcher/internal/modules/fetcher"
	"image-fetcher/internal/modules/filereader"
	"image-fetcher/internal/modules/persistence"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	configPath string
	urlFile    string
	saveDir    string
	timeout    time.Duration
	userAgent  string
	progress   bool
	verbose    bool
}

// NewRootCmd builds the root command. level is raised to debug by --verbose.
func NewRootCmd(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "image-fetcher [urls...]",
		Short: "Download images from URLs into a local directory",
		Long: `A CLI tool that fetches images from the given URLs, skips anything that is not
an image or whose content was already saved in this run, and writes the rest
into a directory (Fetched_Images by default).

URLs are taken from the arguments, from --file, or from an interactive prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, cmd, args, opts, logger, level)
		},
	}

	bindFlags(rootCmd.Flags(), opts, config.Default())

	return rootCmd
}

func bindFlags(flags *pflag.FlagSet, opts *options, defaults config.Config) {
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a TOML config file")
	flags.StringVarP(&opts.urlFile, "file", "f", "", "Read URLs from a file instead of the prompt")
	flags.StringVarP(&opts.saveDir, "dir", "d", defaults.SaveDir, "Directory to save images into")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "Per-request timeout")
	flags.StringVar(&opts.userAgent, "user-agent", defaults.UserAgent, "User-Agent header sent with each request")
	flags.BoolVar(&opts.progress, "progress", false, "Show a progress bar on stderr")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) int {
	return exitCode(NewRootCmd(ctx, logger, level).Execute(), logger)
}

func exitCode(err error, logger *zap.Logger) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		logger.Info("run interrupted")
		return 130
	case errors.Is(err, models.ErrNoURLs):
		return 1
	default:
		logger.Error("execution failed", zap.Error(err))
		return 1
	}
}

func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.SaveDir = opts.saveDir
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = opts.userAgent
	}
	if flags.Changed("progress") {
		cfg.Progress = opts.progress
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	return cfg, cfg.Validate()
}

func collectURLs(ctx context.Context, cmd *cobra.Command, args []string, opts *options, logger *zap.Logger) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if opts.urlFile != "" {
		return filereader.New(opts.urlFile).ReadURLs(ctx, logger)
	}
	return filereader.ReadLine(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, opts *options, logger *zap.Logger, level zap.AtomicLevel) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Welcome to the Ubuntu Image Fetcher")
	fmt.Fprintln(out, "A tool for mindfully collecting images from the web")
	fmt.Fprintln(out)

	urls, err := collectURLs(ctx, cmd, args, opts, logger)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(out, "✗ No URLs provided.")
		return models.ErrNoURLs
	}

	logger.Info("starting URL processing",
		zap.Int("total_urls", len(urls)),
		zap.String("save_dir", cfg.SaveDir),
		zap.Duration("timeout", cfg.Timeout))

	dl := downloader.New(
		downloader.WithTimeout(cfg.Timeout),
		downloader.WithUserAgent(cfg.UserAgent),
		downloader.WithLogger(logger),
	)
	f := fetcher.New(dl, persistence.New(logger, cfg.SaveDir), dedupe.NewSeenHashes(), out, logger)

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = newProgressBar(cmd.ErrOrStderr(), len(urls))
	}

	tally := newTally()
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			logger.Warn("application shutdown triggered", zap.String("reason", err.Error()))
			return err
		}
		tally.add(f.FetchAndSave(ctx, url))
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Connection strengthened. Community enriched.")
	tally.log(logger)
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("images"),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

type tally struct {
	counts  map[models.Outcome]int
	skipped int
	failed  int
	bytes   uint64
}

func newTally() *tally {
	return &tally{counts: make(map[models.Outcome]int)}
}

func (t *tally) add(res models.Result) {
	t.counts[res.Outcome]++
	switch {
	case res.Outcome.Skipped():
		t.skipped++
	case res.Outcome.Failed():
		t.failed++
	default:
		t.bytes += uint64(res.Size)
	}
}

func (t *tally) log(logger *zap.Logger) {
	logger.Info("processing completed",
		zap.Int("saved", t.counts[models.OutcomeSaved]),
		zap.Int("skipped", t.skipped),
		zap.Int("failed", t.failed),
		zap.Int("not_image", t.counts[models.OutcomeNotImage]),
		zap.Int("duplicate", t.counts[models.OutcomeDuplicate]),
		zap.Int("network_failure", t.counts[models.OutcomeNetworkFailure]),
		zap.Int("filesystem_failure", t.counts[models.OutcomeFilesystemFailure]),
		zap.Int("unexpected", t.counts[models.OutcomeUnexpected]),
		zap.String("saved_bytes", humanize.Bytes(t.bytes)))
}
