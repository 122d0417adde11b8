package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/mocks"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/testutil"
)

var (
	emailContact = model.Contact{Kind: model.ContactEmail, Value: "ana@x.com"}
	phoneContact = model.Contact{Kind: model.ContactPhone, Value: "+14155550123"}
)

func TestLogSender_Send(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		wantCode bool
	}{
		{name: "info level hides code", level: 0, wantCode: false},
		{name: "debug level shows code", level: -4, wantCode: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewLogSender(logger.NewWithWriter(&buf, tt.level, "text"))

			require.NoError(t, s.Send(context.Background(), phoneContact, "123456"))
			assert.Contains(t, buf.String(), "+14155550123")
			if tt.wantCode {
				assert.Contains(t, buf.String(), "123456")
			} else {
				assert.NotContains(t, buf.String(), "123456")
			}
		})
	}
}

func TestLogSender_CancelledContext(t *testing.T) {
	s := NewLogSender(testutil.MakeNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Send(ctx, emailContact, "123456"), context.Canceled)
}

func TestSMTPSender_SendsMail(t *testing.T) {
	fallback := &mocks.Sender{}
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 2525, From: "no-reply@farmgate.local"}, fallback, testutil.MakeNoopLogger())

	var (
		gotAddr string
		gotTo   []string
		gotMsg  []byte
	)
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Equal(t, "no-reply@farmgate.local", from)
		return nil
	}

	require.NoError(t, s.Send(context.Background(), emailContact, "654321"))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, []string{"ana@x.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Your verification code")
	assert.Contains(t, string(gotMsg), "654321")
	fallback.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSMTPSender_Failure(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 25}, &mocks.Sender{}, testutil.MakeNoopLogger())
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := s.Send(context.Background(), emailContact, "654321")
	require.ErrorIs(t, err, model.ErrDeliveryFailed)
}

func TestSMTPSender_PhoneUsesFallback(t *testing.T) {
	fallback := &mocks.Sender{}
	fallback.On("Send", mock.Anything, phoneContact, "111111").Return(nil).Once()

	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 25}, fallback, testutil.MakeNoopLogger())
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("mail must not be sent to a phone contact")
		return nil
	}

	require.NoError(t, s.Send(context.Background(), phoneContact, "111111"))
	fallback.AssertExpectations(t)
}
