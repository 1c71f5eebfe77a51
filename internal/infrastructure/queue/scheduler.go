package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	"library-backend/internal/shared"
)

// Scheduler registers the cron-driven maintenance tasks with asynq. All
// schedules run in UTC.
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddr, redisPassword string, redisDB int, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs wires every scheduled task.
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerSweepOverdueJob(); err != nil {
		return err
	}
	if err := s.registerDueSoonRemindersJob(); err != nil {
		return err
	}
	if err := s.registerOverdueRemindersJob(); err != nil {
		return err
	}
	return s.registerCleanupExpiredTokensJob()
}

// ================================================
// JOB 1: Sweep overdue loans (hourly)
// ================================================
func (s *Scheduler) registerSweepOverdueJob() error {
	payload, err := json.Marshal(shared.SweepOverduePayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeSweepOverdue, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.SweepCron,
		task,
		asynq.Queue(shared.QueueLoan),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("[Scheduler] failed to register sweep job")
		return err
	}

	log.Info().Str("cron", s.jobConfig.SweepCron).Msg("[Scheduler] registered overdue sweep")
	return nil
}

// ================================================
// JOB 2: Due-soon reminders (daily, morning)
// ================================================
func (s *Scheduler) registerDueSoonRemindersJob() error {
	payload, err := json.Marshal(shared.ReminderPayload{Limit: s.jobConfig.ReminderBatch})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeDueSoonReminders, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.DueSoonCron,
		task,
		asynq.Queue(shared.QueueLoan),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("[Scheduler] failed to register due-soon job")
		return err
	}

	log.Info().Str("cron", s.jobConfig.DueSoonCron).Msg("[Scheduler] registered due-soon reminders")
	return nil
}

// ================================================
// JOB 3: Overdue reminders (daily, after the sweep)
// ================================================
func (s *Scheduler) registerOverdueRemindersJob() error {
	payload, err := json.Marshal(shared.ReminderPayload{Limit: s.jobConfig.ReminderBatch})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeOverdueReminders, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.OverdueCron,
		task,
		asynq.Queue(shared.QueueLoan),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("[Scheduler] failed to register overdue reminders job")
		return err
	}

	log.Info().Str("cron", s.jobConfig.OverdueCron).Msg("[Scheduler] registered overdue reminders")
	return nil
}

// ================================================
// JOB 4: Cleanup expired tokens (nightly)
// ================================================
func (s *Scheduler) registerCleanupExpiredTokensJob() error {
	payload, err := json.Marshal(shared.CleanupExpiredTokensPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupExpiredTokens, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.TokenCleanupCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("[Scheduler] failed to register token cleanup job")
		return err
	}

	log.Info().Str("cron", s.jobConfig.TokenCleanupCron).Msg("[Scheduler] registered token cleanup")
	return nil
}

// Start runs the scheduler loop; it blocks until Shutdown.
func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
