package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/transaction/service"
	"library-backend/internal/shared"
	"library-backend/pkg/clock"
)

// SweepNotifier is the queue surface the sweep publishes through.
// Overdue notices go out by email always and by SMS when the borrower
// has a verified phone. *queue.Client satisfies it.
type SweepNotifier interface {
	service.Notifier
	EnqueueSMS(ctx context.Context, phone, message string)
}

// SweepJob promotes past-due loans to overdue on a schedule and fans out
// one notification per newly-overdue loan.
type SweepJob struct {
	service service.ServiceInterface
	queue   SweepNotifier
	clock   clock.Clock

	mu sync.Mutex // one sweep at a time
}

func NewSweepJob(service service.ServiceInterface, queueClient SweepNotifier, clk clock.Clock) *SweepJob {
	return &SweepJob{service: service, queue: queueClient, clock: clk}
}

// HandleSweepOverdue processes the loan:sweep_overdue task. If a previous
// sweep is still running the tick is skipped; the next tick picks up
// whatever is left.
func (j *SweepJob) HandleSweepOverdue(ctx context.Context, t *asynq.Task) error {
	if !j.mu.TryLock() {
		log.Warn().Msg("[SweepJob] previous sweep still running, skipping")
		return nil
	}
	defer j.mu.Unlock()

	started := j.clock.Now()
	items, err := j.service.SweepOverdue(ctx, started)
	if err != nil {
		log.Error().Err(err).Msg("[SweepJob] sweep failed")
		return err
	}

	for _, item := range items {
		j.queue.EnqueueLoanNotice(ctx, shared.EmailNoticePayload{
			Kind:       shared.NoticeOverdue,
			Email:      item.UserEmail,
			Name:       item.UserFullName,
			BookTitle:  item.BookTitle,
			DueDate:    item.DueDate.Format(time.RFC3339),
			FineAmount: item.FineAmount.String(),
		})

		if item.PhoneVerified && item.UserPhone != "" {
			j.queue.EnqueueSMS(ctx, item.UserPhone, fmt.Sprintf(
				"Your loan of %q was due on %s and is now overdue. Current fine: $%s.",
				item.BookTitle, item.DueDate.Format("Jan 2"), item.FineAmount.String()))
		}
	}

	log.Info().
		Int("newly_overdue", len(items)).
		Dur("took", j.clock.Now().Sub(started)).
		Msg("[SweepJob] sweep completed")

	return nil
}
