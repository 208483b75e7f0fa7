package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/knadh/smtppool"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	UseTLS      bool
	MaxConns    int
	SendTimeout time.Duration
}

// sender is the part of *smtppool.Pool the mailer needs.
type sender interface {
	Send(e smtppool.Email) error
}

// OTPMailer delivers one-time codes through a pooled SMTP connection.
type OTPMailer struct {
	pool sender
	from string
}

func NewPool(cfg Config) (*smtppool.Pool, error) {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port <= 0 {
		return nil, errors.New("mail: smtp host and port are required")
	}
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	var tlsConfig *tls.Config
	if cfg.UseTLS {
		tlsConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 4
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return smtppool.New(smtppool.Opt{
		Host:            cfg.Host,
		Port:            cfg.Port,
		MaxConns:        maxConns,
		IdleTimeout:     timeout,
		PoolWaitTimeout: timeout,
		TLSConfig:       tlsConfig,
		Auth:            auth,
	})
}

func NewOTPMailer(pool sender, from string) *OTPMailer {
	return &OTPMailer{pool: pool, from: strings.TrimSpace(from)}
}

func (m *OTPMailer) SendOTP(ctx context.Context, purpose domain.OTPPurpose, email, name, code string) error {
	if m == nil || m.pool == nil {
		return errors.New("mailer not configured")
	}
	if m.from == "" {
		return errors.New("mailer missing from address")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, ok := otpMessages[purpose]
	if !ok {
		return fmt.Errorf("mail: unknown otp purpose %q", purpose)
	}
	var html bytes.Buffer
	if err := msg.body.Execute(&html, otpView{Name: name, Code: code, Minutes: int(domain.OTPTTL / time.Minute)}); err != nil {
		return fmt.Errorf("mail: render %s: %w", purpose, err)
	}
	text := fmt.Sprintf("Your code is %s. It will expire in %d minutes.", code, int(domain.OTPTTL/time.Minute))

	return m.pool.Send(smtppool.Email{
		From:    m.from,
		To:      []string{email},
		Subject: msg.subject,
		HTML:    html.Bytes(),
		Text:    []byte(text),
	})
}

type otpView struct {
	Name    string
	Code    string
	Minutes int
}

type otpMessage struct {
	subject string
	body    *template.Template
}

var otpMessages = map[domain.OTPPurpose]otpMessage{
	domain.OTPPurposeRegistration: {
		subject: "Verify your Foodieland account",
		body: template.Must(template.New("registration").Parse(`<p>Hi {{.Name}},</p>
<p>Welcome to Foodieland! Use the code below to verify your email address.</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>This code will expire in {{.Minutes}} minutes.</p>`)),
	},
	domain.OTPPurposePasswordReset: {
		subject: "Your Foodieland password reset code",
		body: template.Must(template.New("password_reset").Parse(`<p>Hi {{.Name}},</p>
<p>Use the code below to reset your password.</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>This code will expire in {{.Minutes}} minutes. If you did not request a reset, ignore this email.</p>`)),
	},
}

var _ ports.OTPMailer = (*OTPMailer)(nil)
