package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/knadh/smtppool"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type recordingSender struct {
	sent []smtppool.Email
	err  error
}

func (r *recordingSender) Send(e smtppool.Email) error {
	r.sent = append(r.sent, e)
	return r.err
}

func TestSendOTPRendersPurpose(t *testing.T) {
	cases := []struct {
		purpose domain.OTPPurpose
		subject string
		phrase  string
	}{
		{domain.OTPPurposeRegistration, "Verify your Foodieland account", "Welcome to Foodieland!"},
		{domain.OTPPurposePasswordReset, "Your Foodieland password reset code", "reset your password"},
	}
	for _, tc := range cases {
		t.Run(string(tc.purpose), func(t *testing.T) {
			rec := &recordingSender{}
			m := NewOTPMailer(rec, "no-reply@foodieland.test")

			if err := m.SendOTP(context.Background(), tc.purpose, "a@x.com", "<Ada>", "123456"); err != nil {
				t.Fatalf("SendOTP: %v", err)
			}
			if len(rec.sent) != 1 {
				t.Fatalf("expected one email, got %d", len(rec.sent))
			}
			e := rec.sent[0]
			if e.Subject != tc.subject || e.From != "no-reply@foodieland.test" || e.To[0] != "a@x.com" {
				t.Fatalf("unexpected envelope %+v", e)
			}
			html := string(e.HTML)
			if !strings.Contains(html, "123456") || !strings.Contains(html, tc.phrase) || !strings.Contains(html, "10 minutes") {
				t.Fatalf("unexpected body %s", html)
			}
			if strings.Contains(html, "<Ada>") {
				t.Fatalf("expected name to be escaped")
			}
		})
	}
}

func TestSendOTPErrors(t *testing.T) {
	rec := &recordingSender{err: errors.New("421 try later")}
	m := NewOTPMailer(rec, "no-reply@foodieland.test")
	if err := m.SendOTP(context.Background(), domain.OTPPurposeRegistration, "a@x.com", "Ada", "123456"); err == nil {
		t.Fatalf("expected transport error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.SendOTP(ctx, domain.OTPPurposeRegistration, "a@x.com", "Ada", "123456"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if err := NewOTPMailer(rec, "").SendOTP(context.Background(), domain.OTPPurposeRegistration, "a@x.com", "Ada", "1"); err == nil {
		t.Fatalf("expected error without from address")
	}
}

func TestNewPoolRequiresHost(t *testing.T) {
	if _, err := NewPool(Config{}); err == nil {
		t.Fatalf("expected error for empty config")
	}
}
