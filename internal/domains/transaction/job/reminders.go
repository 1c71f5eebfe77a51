package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/transaction/service"
	"library-backend/internal/shared"
	"library-backend/pkg/clock"
)

const defaultReminderBatch = 200

// ReminderJob sends the daily due-soon and overdue reminder batches.
type ReminderJob struct {
	service service.ServiceInterface
	queue   service.Notifier
	clock   clock.Clock
}

func NewReminderJob(service service.ServiceInterface, queueClient service.Notifier, clk clock.Clock) *ReminderJob {
	return &ReminderJob{service: service, queue: queueClient, clock: clk}
}

func reminderLimit(t *asynq.Task) int {
	var p shared.ReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err == nil && p.Limit > 0 {
		return p.Limit
	}
	return defaultReminderBatch
}

// HandleDueSoonReminders processes loan:due_soon_reminders.
func (j *ReminderJob) HandleDueSoonReminders(ctx context.Context, t *asynq.Task) error {
	now := j.clock.Now()
	items, err := j.service.DueSoon(ctx, now, reminderLimit(t))
	if err != nil {
		log.Error().Err(err).Msg("[ReminderJob] due-soon query failed")
		return err
	}

	for _, item := range items {
		j.queue.EnqueueLoanNotice(ctx, shared.EmailNoticePayload{
			Kind:      shared.NoticeDueSoon,
			Email:     item.UserEmail,
			Name:      item.UserFullName,
			BookTitle: item.BookTitle,
			DueDate:   item.DueDate.Format(time.RFC3339),
		})
	}

	log.Info().Int("reminders", len(items)).Msg("[ReminderJob] due-soon reminders enqueued")
	return nil
}

// HandleOverdueReminders processes loan:overdue_reminders.
func (j *ReminderJob) HandleOverdueReminders(ctx context.Context, t *asynq.Task) error {
	now := j.clock.Now()
	items, err := j.service.Overdue(ctx, now, reminderLimit(t))
	if err != nil {
		log.Error().Err(err).Msg("[ReminderJob] overdue query failed")
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
	}

	log.Info().Int("reminders", len(items)).Msg("[ReminderJob] overdue reminders enqueued")
	return nil
}
