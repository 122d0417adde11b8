// Package notify delivers verification codes to contacts.
package notify

import (
	"context"

	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.Sender = (*LogSender)(nil)

// LogSender writes codes to the service log. It is meant for development and
// for channels that have no real transport configured.
type LogSender struct {
	logger *logger.Logger
}

func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, contact model.Contact, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Info("Notify: verification code issued",
		"channel", string(contact.Kind),
		"contact", contact.Value)
	// The code itself only reaches debug output.
	s.logger.Debug("Notify: verification code",
		"contact", contact.Value,
		"code", code)

	return nil
}
