package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared"
)

// Client wraps the asynq client for fire-and-forget notification dispatch.
// Enqueue failures are logged and swallowed: a dropped notice must never
// roll back or block the state transition that produced it.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, queue string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("task", taskType).Msg("[Queue] failed to marshal payload")
		return
	}

	task := asynq.NewTask(taskType, data)
	if _, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(queue),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	); err != nil {
		log.Error().Err(err).Str("task", taskType).Msg("[Queue] failed to enqueue task")
	}
}

// EnqueueVerificationEmail queues the registration email.
func (c *Client) EnqueueVerificationEmail(ctx context.Context, email, token string) {
	c.enqueue(ctx, shared.TypeSendVerificationEmail,
		shared.VerificationEmailPayload{Email: email, Token: token},
		shared.QueueNotification)
}

// EnqueuePhoneOTP queues the phone verification code SMS.
func (c *Client) EnqueuePhoneOTP(ctx context.Context, phone, code string) {
	c.enqueue(ctx, shared.TypeSendPhoneOTP,
		shared.PhoneOTPPayload{Phone: phone, Code: code},
		shared.QueueNotification)
}

// EnqueueLoanNotice queues a circulation email (issued/returned/renewed/
// due_soon/overdue).
func (c *Client) EnqueueLoanNotice(ctx context.Context, p shared.EmailNoticePayload) {
	c.enqueue(ctx, shared.TypeNotifyEmail, p, shared.QueueNotification)
}

// EnqueueSMS queues a raw text message.
func (c *Client) EnqueueSMS(ctx context.Context, phone, message string) {
	c.enqueue(ctx, shared.TypeNotifySMS,
		shared.SMSNoticePayload{Phone: phone, Message: message},
		shared.QueueNotification)
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Ping verifies the broker connection at startup.
func (c *Client) Ping() error {
	if c.client == nil {
		return fmt.Errorf("asynq client is not initialized")
	}
	return c.client.Ping()
}
