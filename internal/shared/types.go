package shared

// Asynq task types. The api process enqueues notification tasks; the worker
// process owns the cron-scheduled maintenance ones.
const (
	TypeNotifyEmail           = "notify:email"
	TypeNotifySMS             = "notify:sms"
	TypeSendVerificationEmail = "email:verification"
	TypeSendPhoneOTP          = "sms:otp"

	TypeSweepOverdue         = "loan:sweep_overdue"
	TypeDueSoonReminders     = "loan:due_soon_reminders"
	TypeOverdueReminders     = "loan:overdue_reminders"
	TypeCleanupExpiredTokens = "auth:cleanup_expired_tokens"
)

// Queue names with worker priorities defined in cmd/worker.
const (
	QueueNotification = "notifications"
	QueueLoan         = "loans"
	QueueMaintenance  = "maintenance"
)

// NoticeKind values for loan notification templates.
const (
	NoticeIssued   = "issued"
	NoticeReturned = "returned"
	NoticeRenewed  = "renewed"
	NoticeDueSoon  = "due_soon"
	NoticeOverdue  = "overdue"
)

// EmailNoticePayload is the notify:email task body.
type EmailNoticePayload struct {
	Kind       string `json:"kind"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	BookTitle  string `json:"book_title"`
	DueDate    string `json:"due_date"`
	FineAmount string `json:"fine_amount"`
}

// SMSNoticePayload is the notify:sms task body.
type SMSNoticePayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// VerificationEmailPayload is the email:verification task body.
type VerificationEmailPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// PhoneOTPPayload is the sms:otp task body.
type PhoneOTPPayload struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// ReminderPayload bounds a reminder batch run.
type ReminderPayload struct {
	Limit int `json:"limit"`
}

type SweepOverduePayload struct{}

type CleanupExpiredTokensPayload struct{}
