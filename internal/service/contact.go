package service

import (
	"context"
	"fmt"

	"github.com/Engarr/Windmill-backend/internal/logging"
	"github.com/Engarr/Windmill-backend/internal/mail"
)

// ContactService relays contact-form messages to the shop inbox. Unlike
// reset-code dispatch, delivery here is best-effort: a failed send is
// logged and the caller still gets an acknowledgement.
type ContactService struct {
	Mailer mail.Sender
	Inbox  string
}

func (s *ContactService) Relay(ctx context.Context, subject, userName, email, message string) {
	l := logging.FromContext(ctx).With("svc", "contact.relay")

	text := fmt.Sprintf("Wiadomość od %s (%s):\n\n%s", userName, email, message)
	html := fmt.Sprintf("<p>Wiadomość od %s (%s):</p><p>%s</p>", userName, email, message)
	if err := s.Mailer.Send(ctx, s.Inbox, subject, text, html); err != nil {
		l.Warn("contact relay failed", "error", err)
		return
	}
	l.Info("contact message relayed")
}
