package service

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/cookbook/backend/internal/models"
)

// Mailer delivers account emails.
type Mailer interface {
	SendPasswordReset(user *models.User, resetURL string) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// EmailService sends mail over SMTP. Without a configured host, messages are
// written to the log instead.
type EmailService struct {
	cfg    SMTPConfig
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg SMTPConfig, logger *zap.Logger) *EmailService {
	if cfg.Host == "" {
		logger.Warn("SMTP not configured, emails will be logged")
	}
	return &EmailService{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (s *EmailService) SendPasswordReset(user *models.User, resetURL string) error {
	subject := "Reset your Cookbook password"
	body := s.buildPasswordResetBody(user, resetURL)
	return s.SendEmail(user.Email, subject, body)
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.Port == "" {
		s.logger.Info("email not sent, SMTP not configured",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body),
		)
		return nil
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	from := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) buildPasswordResetBody(user *models.User, resetURL string) string {
	caser := cases.Title(language.English)
	name := caser.String(user.FirstName)
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Reset your password</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>Hello %s,</h2>
	<p>We received a request to reset the password for your Cookbook account.</p>

	<div style="text-align: center; margin: 30px 0;">
		<a href="%s" style="background-color: #4CAF50; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; font-weight: bold;">
			Reset Password
		</a>
	</div>

	<p style="color: #666; font-size: 14px;">If the button above doesn't work, copy and paste this link into your browser:</p>
	<p style="background-color: #eee; padding: 10px; border-radius: 5px; word-break: break-all; font-size: 12px;">%s</p>

	<p style="color: #666; font-size: 12px;">
		This link expires in one hour. If you didn't ask to reset your password, you can ignore this email.
	</p>
</body>
</html>
	`, name, resetURL, resetURL)
}
