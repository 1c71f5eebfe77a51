package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/infrastructure/email"
	"library-backend/internal/shared"
)

// VerificationEmailHandler delivers email:verification tasks.
type VerificationEmailHandler struct {
	service email.EmailService
	baseURL string
}

func NewVerificationEmailHandler(service email.EmailService, baseURL string) *VerificationEmailHandler {
	return &VerificationEmailHandler{service: service, baseURL: baseURL}
}

func (h *VerificationEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p shared.VerificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal verification payload: %w", err)
	}

	err := h.service.SendVerificationEmail(ctx, email.VerificationEmailData{
		Email:      p.Email,
		VerifyLink: h.baseURL + "/api/v1/auth/verify-email?token=" + p.Token,
		ExpiresIn:  "24 hours",
	})
	if err != nil {
		log.Error().Err(err).Str("email", p.Email).Msg("[EmailJob] verification email failed")
		return err
	}

	log.Info().Str("email", p.Email).Msg("[EmailJob] verification email sent")
	return nil
}

// LoanNoticeHandler delivers notify:email tasks.
type LoanNoticeHandler struct {
	service email.EmailService
}

func NewLoanNoticeHandler(service email.EmailService) *LoanNoticeHandler {
	return &LoanNoticeHandler{service: service}
}

func (h *LoanNoticeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p shared.EmailNoticePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal notice payload: %w", err)
	}

	err := h.service.SendLoanNotice(ctx, email.LoanNoticeData{
		Email:      p.Email,
		Name:       p.Name,
		Kind:       p.Kind,
		BookTitle:  p.BookTitle,
		DueDate:    p.DueDate,
		FineAmount: p.FineAmount,
	})
	if err != nil {
		log.Error().Err(err).
			Str("email", p.Email).
			Str("kind", p.Kind).
			Msg("[EmailJob] loan notice failed")
		return err
	}

	log.Info().Str("email", p.Email).Str("kind", p.Kind).Msg("[EmailJob] loan notice sent")
	return nil
}
