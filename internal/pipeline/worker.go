package pipeline

import (
	"context"
	"log/slog"

	"markdoc/internal/convert"
)

// Worker converts a single job. Conversion is pure CPU and deterministic,
// so there is no retry path: a failed parse fails the same way every time.
type Worker struct {
	log *slog.Logger
}

func NewWorker(log *slog.Logger) *Worker {
	return &Worker{log: log}
}

// Process runs the conversion for one job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if ctx.Err() != nil {
		job.Fail(ctx.Err())
		return
	}

	job.SetStatus(StatusConverting)
	markdown, err := convert.Source(job.Filename, job.source(), log)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.Fail(err)
		return
	}
	job.Complete(markdown)
	log.Info("conversion complete", "bytes", len(markdown))
}
