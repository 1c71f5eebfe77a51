package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/user/service"
)

// CleanupJob clears expired verification tokens and OTP codes. Scheduled
// nightly; safe to run at any frequency since the purge is idempotent.
type CleanupJob struct {
	service service.ServiceInterface
}

func NewCleanupJob(service service.ServiceInterface) *CleanupJob {
	return &CleanupJob{service: service}
}

// HandleCleanupExpiredTokens processes the auth:cleanup_expired_tokens task.
func (j *CleanupJob) HandleCleanupExpiredTokens(ctx context.Context, t *asynq.Task) error {
	purged, err := j.service.CleanupExpiredTokens(ctx)
	if err != nil {
		log.Error().Err(err).Msg("[CleanupJob] failed to purge expired tokens")
		return err
	}

	log.Info().Int64("purged", purged).Msg("[CleanupJob] expired verification tokens cleared")
	return nil
}
