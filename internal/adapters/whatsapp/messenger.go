package whatsapp

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"eventinvitations/internal/domain"
)

// MessengerConfig holds configuration for creating a WhatsApp messenger.
type MessengerConfig struct {
	Provider   string
	AccountSID string
	AuthToken  string
	FromNumber string
}

// NewMessenger creates a messenger from config. Provider "twilio" uses the
// Twilio Messaging API; "noop" or unknown logs instead of sending.
func NewMessenger(config MessengerConfig, logger *slog.Logger) (domain.Messenger, error) {
	switch config.Provider {
	case "twilio":
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: config.AccountSID,
			Password: config.AuthToken,
		})
		return &twilioMessenger{
			client: client,
			logger: logger,
			from:   withWhatsAppPrefix(config.FromNumber),
		}, nil
	case "noop":
		return &noopMessenger{logger: logger}, nil
	default:
		logger.Warn("unknown WhatsApp provider, using noop", "provider", config.Provider)
		return &noopMessenger{logger: logger}, nil
	}
}

type twilioMessenger struct {
	client *twilio.RestClient
	logger *slog.Logger
	from   string
}

func (m *twilioMessenger) Send(toPhone, text string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(withWhatsAppPrefix(toPhone))
	params.SetFrom(m.from)
	params.SetBody(text)

	resp, err := m.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("send WhatsApp message via Twilio: %w", err)
	}
	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	m.logger.Info("WhatsApp message sent via Twilio", "sid", sid)
	return sid, nil
}

// withWhatsAppPrefix makes a phone number Twilio-addressable; the API
// requires the "whatsapp:" scheme on both ends.
func withWhatsAppPrefix(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}

type noopMessenger struct {
	logger *slog.Logger
}

func (n *noopMessenger) Send(toPhone, text string) (string, error) {
	n.logger.Info("WhatsApp message would be sent (noop)", "to", toPhone)
	return "noop-message-id", nil
}
