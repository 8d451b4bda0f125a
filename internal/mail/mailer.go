// Package mail sends outbound transactional email. The Sender interface
// keeps the services testable; the production implementation is Postmark.
package mail

import "context"

type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}
