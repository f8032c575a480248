package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/sharkfund/sharkfund-backend/config"
	"github.com/sharkfund/sharkfund-backend/pkg/logger"
)

// Mailer delivers one-time codes to users. Delivery is best effort: the
// password recovery flow never fails because an email could not be sent.
type Mailer interface {
	SendOTP(email, username, code string) error
}

// SMTPMailer sends OTP emails through a plain-auth SMTP relay.
type SMTPMailer struct {
	cfg *config.SMTPConfig
}

func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendOTP sends the password reset code to the user's email address.
// When SMTP credentials are not configured the code is logged instead,
// so the flow stays usable in local development.
func (m *SMTPMailer) SendOTP(email, username, code string) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		logger.Info("[DEV MODE] Password reset OTP (SMTP not configured)", map[string]interface{}{
			"email": email,
			"otp":   code,
		})
		return nil
	}

	subject := "SharkFund Password Reset OTP"
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #333; margin-bottom: 20px;">Password Reset</h1>
		<p style="color: #666; line-height: 1.6; margin-bottom: 30px;">
			Hello %s,<br>
			We received a request to reset the password for your SharkFund account.<br>
			Enter the code below to continue.
		</p>
		<div style="background-color: #f8f9fa; padding: 30px; border-radius: 8px; text-align: center; margin-bottom: 30px;">
			<h2 style="color: #333; margin: 0; font-size: 36px; letter-spacing: 4px;">%s</h2>
		</div>
		<p style="color: #999; font-size: 14px; margin-bottom: 10px;">
			* This code is valid for 10 minutes.
		</p>
		<p style="color: #999; font-size: 14px;">
			* If you did not request a password reset, you can safely ignore this email.
		</p>
	</div>
</body>
</html>
`, username, code)

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.cfg.FromAddress, email, subject, body,
	))

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{email}, message); err != nil {
		logger.Error("Failed to send OTP email", err, map[string]interface{}{
			"email": email,
		})
		return fmt.Errorf("failed to send OTP email: %w", err)
	}

	logger.Info("OTP email sent", map[string]interface{}{
		"email": email,
	})
	return nil
}
