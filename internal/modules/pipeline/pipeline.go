package pipeline

import (
	"context"
	"image-fetcher/internal/models"

	"go.uber.org/zap"
)

// Job carries one URL through the stages. Each stage fills in its part.
type Job struct {
	URL      string
	Content  models.Content
	Filename string
	Hash     string
	Path     string
}

// Stage defines the interface for a pipeline stage.
// A stage either advances the job or returns an error that ends the run for that job.
type Stage interface {
	Execute(ctx context.Context, job *Job, logger *zap.Logger) error
}

// StageFunc adapts a plain function to Stage.
type StageFunc func(ctx context.Context, job *Job, logger *zap.Logger) error

func (f StageFunc) Execute(ctx context.Context, job *Job, logger *zap.Logger) error {
	return f(ctx, job, logger)
}

// Pipeline runs a fixed sequence of stages over one job at a time.
type Pipeline struct {
	stages []Stage      // List of stages in the pipeline
	logger *zap.Logger // Logger for pipeline-wide logging
}

// New creates a new Pipeline instance with the given logger.
//
// Parameters:
//   - logger: Logger for logging pipeline events.
//
// Returns:
//   - A pointer to a new Pipeline instance.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// AddStage adds a stage to the pipeline's sequence.
//
// Parameters:
//   - stage: The stage to add.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Run executes the stages in order against job on the calling goroutine.
//
// Parameters:
//   - ctx: Context for cancellation. Checked before each stage.
//   - job: The job to process.
//
// Returns:
//   - The first stage error, ctx.Err() if canceled between stages, nil otherwise.
func (p *Pipeline) Run(ctx context.Context, job *Job) error {
	if len(p.stages) == 0 {
		p.logger.Warn("no stages in pipeline")
		return nil
	}

	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline canceled", zap.String("url", job.URL), zap.Error(err))
			return err
		}
		if err := stage.Execute(ctx, job, p.logger); err != nil {
			p.logger.Debug("stage stopped job",
				zap.Int("stage", i),
				zap.String("url", job.URL),
				zap.Error(err))
			return err
		}
	}
	return nil
}
