package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleSender logs messages instead of sending them. Used when no
// SendGrid key is configured.
type ConsoleSender struct {
	log zerolog.Logger
}

var _ Sender = (*ConsoleSender)(nil)

func NewConsoleSender(log zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log.With().Str("component", "console_mailer").Logger()}
}

func (s *ConsoleSender) Send(_ context.Context, msg *Message) error {
	to := make([]string, len(msg.To))
	for i, a := range msg.To {
		to[i] = a.Email
	}
	s.log.Info().
		Strs("to", to).
		Str("subject", msg.Subject).
		Str("template", msg.Template).
		Msg("Email\n" + msg.TextContent)
	return nil
}
