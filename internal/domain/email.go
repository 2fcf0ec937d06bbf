package domain

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// Messenger defines the contract for sending WhatsApp messages. It
// returns the carrier message ID on success.
type Messenger interface {
	Send(toPhone, text string) (messageID string, err error)
}
