package email

import (
	"context"
	"fmt"
	"net/smtp"

	"library-backend/pkg/logger"
)

type VerificationEmailData struct {
	Email      string
	VerifyLink string
	ExpiresIn  string
}

// LoanNoticeData carries the template fields for every circulation email.
// Kind selects the subject/body template.
type LoanNoticeData struct {
	Email      string
	Name       string
	Kind       string // issued, returned, renewed, due_soon, overdue
	BookTitle  string
	DueDate    string
	FineAmount string
}

type EmailService interface {
	SendVerificationEmail(ctx context.Context, data VerificationEmailData) error
	SendLoanNotice(ctx context.Context, data LoanNoticeData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewSMTPEmailService builds the dev SMTP sender (mailhog style, no auth).
func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendVerificationEmail(ctx context.Context, data VerificationEmailData) error {
	subject := "Verify your library account"
	body := fmt.Sprintf(`Hello,

Please click the link below to verify your library account:
%s

The link is valid for %s.

If you did not register this account, please ignore this email.`, data.VerifyLink, data.ExpiresIn)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) SendLoanNotice(ctx context.Context, data LoanNoticeData) error {
	subject, body := renderLoanNotice(data)
	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{to}, msg); err != nil {
		logger.Warn("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        to,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func renderLoanNotice(data LoanNoticeData) (subject, body string) {
	switch data.Kind {
	case "issued":
		subject = fmt.Sprintf("Book issued: %s", data.BookTitle)
		body = fmt.Sprintf(`Hello %s,

"%s" has been issued to you. It is due back on %s.

Happy reading!`, data.Name, data.BookTitle, data.DueDate)
	case "returned":
		subject = fmt.Sprintf("Book returned: %s", data.BookTitle)
		body = fmt.Sprintf(`Hello %s,

We have received "%s". Thank you for returning it.`, data.Name, data.BookTitle)
		if data.FineAmount != "" && data.FineAmount != "0" {
			body += fmt.Sprintf("\n\nA late fine of $%s was assessed on this loan.", data.FineAmount)
		}
	case "renewed":
		subject = fmt.Sprintf("Loan renewed: %s", data.BookTitle)
		body = fmt.Sprintf(`Hello %s,

Your loan of "%s" has been renewed. The new due date is %s.`, data.Name, data.BookTitle, data.DueDate)
	case "due_soon":
		subject = fmt.Sprintf("Due soon: %s", data.BookTitle)
		body = fmt.Sprintf(`Hello %s,

"%s" is due back on %s. Return or renew it to avoid a late fine.`, data.Name, data.BookTitle, data.DueDate)
	case "overdue":
		subject = fmt.Sprintf("Overdue: %s", data.BookTitle)
		body = fmt.Sprintf(`Hello %s,

"%s" was due on %s and is now overdue. Your fine so far is $%s and grows by the day.
Please return the book as soon as possible.`, data.Name, data.BookTitle, data.DueDate, data.FineAmount)
	default:
		subject = "Library notice"
		body = fmt.Sprintf("Hello %s,\n\nThere is an update on your loan of \"%s\".", data.Name, data.BookTitle)
	}
	return subject, body
}
