package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/url"
	"time"

	"github.com/bookmook/storefront/internal/config"
	"github.com/bookmook/storefront/internal/logging"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("smtp is not configured")

const verificationSubject = "[BookMook] 이메일 주소를 확인해 주세요"

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: system-ui, sans-serif; line-height: 1.5; color: #111827; max-width: 600px; margin: 0 auto; padding: 20px;">
    <p>안녕하세요 {{.Greeting}}.</p>
    <p>BookMook 회원가입을 완료하려면 아래 버튼을 눌러주세요.</p>
    <p style="margin: 24px 0;">
        <a href="{{.VerificationLink}}"
           style="display:inline-block;padding:12px 20px;background:#000;color:#fff;text-decoration:none;border-radius:9999px;font-weight:500;">
            이메일 인증하기
        </a>
    </p>
    <p style="font-size: 12px; color: #6b7280; word-break: break-all;">{{.VerificationLink}}</p>
    <p style="font-size: 12px; color: #6b7280;">이 링크는 24시간 동안 유효합니다.</p>
</body>
</html>
`))

const defaultSendTimeout = 10 * time.Second

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	verifyURL    string
	timeout      time.Duration
	send         sendFunc
}

func NewService(cfg config.EmailConfig) *Service {
	from := cfg.FromAddress
	if from == "" {
		from = cfg.SMTPUser
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	s := &Service{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    from,
		verifyURL:    cfg.VerifyURL,
		timeout:      timeout,
	}
	s.send = s.dialAndSend
	return s
}

// VerificationLink builds the link that consumes token.
func (s *Service) VerificationLink(token string) string {
	return s.verifyURL + "/auth/verify-email?" + url.Values{"token": {token}}.Encode()
}

// SendVerificationEmail mails the verification link for a pending signup.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, name, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	if s.smtpHost == "" {
		return ErrNotConfigured
	}

	body, err := renderVerificationEmail(name, s.VerificationLink(token))
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(ctx, toEmail, verificationSubject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, mime.BEncoding.Encode("UTF-8", subject), body,
	))

	envelopeFrom := s.fromEmail
	if parsed, err := mail.ParseAddress(s.fromEmail); err == nil {
		envelopeFrom = parsed.Address
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr := net.JoinHostPort(s.smtpHost, s.smtpPort)
	return s.send(ctx, addr, auth, envelopeFrom, []string{to}, msg)
}

// dialAndSend is smtp.SendMail bounded by ctx: the dial and every later
// read and write fail once ctx is done.
func (s *Service) dialAndSend(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	c, err := smtp.NewClient(conn, s.smtpHost)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.smtpHost}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func renderVerificationEmail(name, link string) (string, error) {
	greeting := "고객님"
	if name != "" {
		greeting = name + "님"
	}

	var buf bytes.Buffer
	data := struct {
		Greeting         string
		VerificationLink string
	}{
		Greeting:         greeting,
		VerificationLink: link,
	}

	if err := verificationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
