// Package mail sends verification and password reset emails over SMTP.
// Delivery is fire-and-forget: sending happens on a background goroutine and
// never blocks the request that triggered it. When no SMTP server is
// configured the link is printed to the log instead.
package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"budgetiq/internal/log"
)

const smtpTimeout = 10 * time.Second

// Sender delivers application emails.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *log.Logger
}

// NewSender builds a sender. Host may be empty, in which case every send
// falls back to logging the link.
func NewSender(host string, port int, username, password, from string, logger *log.Logger) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger.WithComponent(log.ComponentMail),
	}
}

func (s *Sender) configured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// SendVerification dispatches the email verification link.
func (s *Sender) SendVerification(email, verifyURL string) {
	html := linkEmail("Verify Your Email",
		"Click the button below to verify your email address and activate your BudgetIQ account.",
		"Verify Email Address", verifyURL,
		"This link expires in 24 hours.")
	s.sendAsync(email, "BudgetIQ - Verify Your Email", html, verifyURL)
}

// SendPasswordReset dispatches the password reset link.
func (s *Sender) SendPasswordReset(email, resetURL string) {
	html := linkEmail("Reset Your Password",
		"We received a password reset request for your account. Click the button below to set a new password.",
		"Reset Password", resetURL,
		"If you didn't request this, you can safely ignore this email.")
	s.sendAsync(email, "BudgetIQ - Password Reset", html, resetURL)
}

// sendAsync delivers on a background goroutine. Failures log the link so a
// developer can complete the flow by hand.
func (s *Sender) sendAsync(to, subject, html, fallbackURL string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), smtpTimeout)
		defer cancel()

		if err := s.send(ctx, to, subject, html); err != nil {
			s.logger.Warn("email delivery failed, link follows",
				log.FieldEmail, to,
				log.FieldError, err,
				"url", fallbackURL)
			return
		}
		s.logger.Info("email sent", log.FieldEmail, to, "subject", subject)
	}()
}

func (s *Sender) send(ctx context.Context, to, subject, html string) error {
	if !s.configured() {
		return fmt.Errorf("no SMTP server configured")
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(smtpTimeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// linkEmail renders the shared single-button email layout.
func linkEmail(heading, intro, buttonLabel, url, footer string) string {
	return fmt.Sprintf(`
<div style="font-family: 'Inter', Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 32px;">
  <div style="text-align: center; margin-bottom: 24px;">
    <h1 style="font-size: 28px; font-weight: 800; margin: 0; color: #6C63FF;">BudgetIQ</h1>
    <p style="color: #6B7280; font-size: 14px; margin-top: 4px;">AI Budget Management</p>
  </div>
  <div style="background: #FFFFFF; border: 1px solid #E5E7EB; border-radius: 16px; padding: 32px;">
    <h2 style="font-size: 20px; font-weight: 700; margin: 0 0 12px;">%s</h2>
    <p style="color: #6B7280; font-size: 15px; line-height: 1.6;">%s</p>
    <div style="text-align: center; margin: 28px 0;">
      <a href="%s" style="display: inline-block; padding: 14px 32px; background: #6C63FF; color: #FFFFFF; text-decoration: none; border-radius: 12px; font-weight: 600; font-size: 15px;">%s</a>
    </div>
    <p style="color: #9CA3AF; font-size: 13px;">
      If the button doesn't work, copy and paste this link:<br/>
      <a href="%s" style="color: #6C63FF; word-break: break-all;">%s</a>
    </p>
    <p style="color: #9CA3AF; font-size: 13px; margin-top: 16px;">%s</p>
  </div>
</div>`, heading, intro, url, buttonLabel, url, url, footer)
}
