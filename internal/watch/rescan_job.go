package watch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rebrag/GTOLite-Helper-Script/internal/viewer"
)

// rescanTimeout bounds one scheduled cycle, including remote sync.
const rescanTimeout = 10 * time.Minute

// RescanJob reruns the viewer pipeline on schedule.
type RescanJob struct {
	service *viewer.Service
	log     zerolog.Logger
}

// NewRescanJob creates the scheduled rescan job.
func NewRescanJob(service *viewer.Service, log zerolog.Logger) *RescanJob {
	return &RescanJob{
		service: service,
		log:     log.With().Str("job", "rescan").Logger(),
	}
}

// Name returns the job name for scheduler logging.
func (j *RescanJob) Name() string {
	return "rescan"
}

// Run executes one rescan cycle.
func (j *RescanJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), rescanTimeout)
	defer cancel()

	report, err := j.service.Rescan(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("build_id", report.BuildID).
		Int("nodes", report.Nodes).
		Int("files", report.Files).
		Msg("Scheduled rescan completed")
	return nil
}
