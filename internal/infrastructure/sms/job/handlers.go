package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/infrastructure/sms"
	"library-backend/internal/shared"
)

// SMSHandler delivers sms:otp and notify:sms tasks.
type SMSHandler struct {
	service sms.SMSService
}

func NewSMSHandler(service sms.SMSService) *SMSHandler {
	return &SMSHandler{service: service}
}

func (h *SMSHandler) ProcessOTPTask(ctx context.Context, t *asynq.Task) error {
	var p shared.PhoneOTPPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal otp payload: %w", err)
	}

	message := fmt.Sprintf("Your library verification code is %s. It expires in 10 minutes.", p.Code)
	msgID, err := h.service.SendSMS(ctx, p.Phone, message)
	if err != nil {
		log.Error().Err(err).Str("phone", p.Phone).Msg("[SMSJob] OTP send failed")
		return err
	}

	log.Info().Str("phone", p.Phone).Str("message_id", msgID).Msg("[SMSJob] OTP sent")
	return nil
}

func (h *SMSHandler) ProcessNotifyTask(ctx context.Context, t *asynq.Task) error {
	var p shared.SMSNoticePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal sms payload: %w", err)
	}

	msgID, err := h.service.SendSMS(ctx, p.Phone, p.Message)
	if err != nil {
		log.Error().Err(err).Str("phone", p.Phone).Msg("[SMSJob] send failed")
		return err
	}

	log.Info().Str("phone", p.Phone).Str("message_id", msgID).Msg("[SMSJob] message sent")
	return nil
}
