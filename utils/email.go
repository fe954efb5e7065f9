package utils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"minishop/models"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message through a mail provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailService renders the application's emails and hands them to a Sender
type EmailService struct {
	sender          Sender
	verificationURL string
	currency        string
	log             *slog.Logger
}

func NewEmailService(sender Sender, verificationURL, currency string, log *slog.Logger) *EmailService {
	return &EmailService{
		sender:          sender,
		verificationURL: verificationURL,
		currency:        currency,
		log:             log,
	}
}

// NewSender picks the provider named by MAIL_PROVIDER.
func NewSender(provider, postmarkToken, sendgridKey, from string, log *slog.Logger) (Sender, error) {
	switch provider {
	case "postmark":
		if postmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set")
		}
		return &PostmarkSender{client: postmark.NewClient(postmarkToken, ""), from: from}, nil
	case "sendgrid":
		if sendgridKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
		return &SendgridSender{client: sendgrid.NewSendClient(sendgridKey), from: from}, nil
	case "log", "":
		return &LogSender{log: log}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", provider)
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	if err := es.sender.Send(ctx, Message{To: toEmail, Subject: subject, HTML: htmlContent}); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	es.log.Info("email sent", "to", toEmail, "subject", subject)
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	verificationLink := fmt.Sprintf("%s?token=%s", es.verificationURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a><br>The link expires shortly.",
		verificationLink,
	)
	return es.SendEmail(ctx, toEmail, "Verify Your Email", htmlContent)
}

// SendPasswordResetEmail sends the one-time code used to confirm a reset
func (es *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, code string) error {
	htmlContent := fmt.Sprintf(
		"<strong>Your password reset code is %s</strong><br>If you did not ask for a reset you can ignore this email.",
		code,
	)
	return es.SendEmail(ctx, toEmail, "Reset Your Password", htmlContent)
}

// SendOrderConfirmationEmail tells the user their payment was received
func (es *EmailService) SendOrderConfirmationEmail(ctx context.Context, toEmail string, order *models.Order) error {
	var amount int64
	if order.Payment != nil {
		amount = order.Payment.Amount
	}
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! We have received payment for order <strong>%s</strong>.<br><br>Total Amount: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.Reference,
		models.FormatAmount(amount, es.currency),
	)
	return es.SendEmail(ctx, toEmail, "Order Confirmation", htmlContent)
}

// PostmarkSender delivers through Postmark.
type PostmarkSender struct {
	client *postmark.Client
	from   string
}

func (s *PostmarkSender) Send(_ context.Context, msg Message) error {
	_, err := s.client.SendEmail(postmark.Email{
		From:     s.from,
		To:       msg.To,
		Subject:  msg.Subject,
		HtmlBody: msg.HTML,
		TextBody: msg.HTML,
	})
	return err
}

// SendgridSender delivers through SendGrid.
type SendgridSender struct {
	client *sendgrid.Client
	from   string
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewSingleEmail(mail.NewEmail("", s.from), msg.Subject, mail.NewEmail("", msg.To), msg.HTML, msg.HTML)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender only logs messages. Used in development.
type LogSender struct {
	log *slog.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email (not delivered)", "to", msg.To, "subject", msg.Subject, "body", msg.HTML)
	return nil
}
