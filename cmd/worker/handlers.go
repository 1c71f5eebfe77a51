package main

import (
	"github.com/hibiken/asynq"

	txjob "library-backend/internal/domains/transaction/job"
	userjob "library-backend/internal/domains/user/job"
	emailjob "library-backend/internal/infrastructure/email/job"
	smsjob "library-backend/internal/infrastructure/sms/job"
	"library-backend/internal/shared"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Notification delivery
	verificationEmail *emailjob.VerificationEmailHandler
	loanNotice        *emailjob.LoanNoticeHandler
	sms               *smsjob.SMSHandler

	// Loan maintenance
	sweep     *txjob.SweepJob
	reminders *txjob.ReminderJob
	cleanup   *userjob.CleanupJob
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	baseURL := utils.GetEnvVariable("APP_BASE_URL", "http://localhost:8080")

	return &HandlerRegistry{
		verificationEmail: emailjob.NewVerificationEmailHandler(c.Email, baseURL),
		loanNotice:        emailjob.NewLoanNoticeHandler(c.Email),
		sms:               smsjob.NewSMSHandler(c.SMS),

		sweep:     c.SweepJob,
		reminders: c.ReminderJob,
		cleanup:   c.CleanupJob,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Notification delivery
	mux.HandleFunc(shared.TypeSendVerificationEmail, h.verificationEmail.ProcessTask)
	mux.HandleFunc(shared.TypeNotifyEmail, h.loanNotice.ProcessTask)
	mux.HandleFunc(shared.TypeSendPhoneOTP, h.sms.ProcessOTPTask)
	mux.HandleFunc(shared.TypeNotifySMS, h.sms.ProcessNotifyTask)

	// Loan maintenance
	mux.HandleFunc(shared.TypeSweepOverdue, h.sweep.HandleSweepOverdue)
	mux.HandleFunc(shared.TypeDueSoonReminders, h.reminders.HandleDueSoonReminders)
	mux.HandleFunc(shared.TypeOverdueReminders, h.reminders.HandleOverdueReminders)
	mux.HandleFunc(shared.TypeCleanupExpiredTokens, h.cleanup.HandleCleanupExpiredTokens)
}
