package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"eventinvitations/internal/domain"
)

// MessageComposer builds channel-specific invitation bodies. It is pure
// construction: no transport, no persistence.
type MessageComposer struct {
	// BaseURL is the public frontend origin confirmation links point at.
	BaseURL string
}

// NewMessageComposer returns a composer producing links under baseURL.
func NewMessageComposer(baseURL string) *MessageComposer {
	return &MessageComposer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ConfirmationLink builds the public RSVP link for an access token.
func (c *MessageComposer) ConfirmationLink(token string) string {
	return fmt.Sprintf("%s/confirmar/%s", c.BaseURL, token)
}

// formatDate renders an event date as DD/MM/YYYY. A zero date renders
// blank rather than failing composition.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

var emailTmpl = template.Must(template.New("invitation_email").Parse(`<html>
  <body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9;">
    <div style="max-width: 600px; margin: auto; background-color: #fff; padding: 25px; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
      <h2 style="color: #333;">Hello {{.RecipientName}},</h2>
      <p>You are invited to <strong>{{.Title}}</strong>!</p>
      {{if .Description}}<p>{{.Description}}</p>{{end}}
      {{if .ImageURI}}<p style="text-align: center;"><img src="{{.ImageURI}}" alt="" style="max-width: 100%; border-radius: 8px;"></p>{{end}}

      <p><strong>Date:</strong> {{.Date}}<br>
         <strong>Location:</strong> {{.Location}}</p>

      <p style="margin-top: 20px;">Confirm your attendance here:</p>
      <p style="text-align: center;">
        <a href="{{.Link}}"
           style="padding: 10px 20px; background-color: #2E8B57; color: #fff; text-decoration: none; border-radius: 5px;">
          Confirm attendance
        </a>
      </p>

      <p style="font-size: 12px; color: #888;">
        If the button does not work, copy and paste this link into your browser:<br>
        <a href="{{.Link}}">{{.Link}}</a>
      </p>
    </div>
  </body>
</html>
`))

type emailData struct {
	RecipientName string
	Title         string
	Description   string
	Date          string
	Location      string
	Link          string
	ImageURI      template.URL
}

// EmailHTML produces the HTML email body for an invitation. If the
// event's design document carries an image element, it is embedded as a
// data URI.
func (c *MessageComposer) EmailHTML(inv *domain.Invitation, event *domain.Event, design *domain.DesignDocument) (string, error) {
	data := emailData{
		RecipientName: inv.RecipientName,
		Title:         event.Title,
		Description:   event.Description,
		Date:          formatDate(event.Date),
		Location:      event.Location,
		Link:          c.ConfirmationLink(inv.AccessToken),
	}
	if img, ok := design.FirstImage(); ok {
		mediaType := img.Type
		if mediaType == "" {
			mediaType = "image/png"
		}
		data.ImageURI = template.URL("data:" + mediaType + ";base64," + img.Data)
	}
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("compose email body: %w", err)
	}
	return buf.String(), nil
}

// EmailText is the auto-derived plaintext fallback for email transports.
func (c *MessageComposer) EmailText(inv *domain.Invitation, event *domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s!\n\n", inv.RecipientName)
	fmt.Fprintf(&b, "You are invited to %s.\n", event.Title)
	if d := strings.TrimSpace(event.Description); d != "" {
		b.WriteString(d + "\n")
	}
	fmt.Fprintf(&b, "\nDate: %s\n", formatDate(event.Date))
	fmt.Fprintf(&b, "Location: %s\n\n", event.Location)
	fmt.Fprintf(&b, "Confirm here: %s\n", c.ConfirmationLink(inv.AccessToken))
	return b.String()
}

// WhatsAppText produces the plain-text WhatsApp body, using lightweight
// emphasis markers instead of HTML.
func (c *MessageComposer) WhatsAppText(inv *domain.Invitation, event *domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Hello %s!\n\n", inv.RecipientName)
	fmt.Fprintf(&b, "You are invited to *%s*.\n", event.Title)
	if d := strings.TrimSpace(event.Description); d != "" {
		b.WriteString(d + "\n")
	}
	fmt.Fprintf(&b, "\n📅 Date: %s\n", formatDate(event.Date))
	fmt.Fprintf(&b, "📍 Location: %s\n\n", event.Location)
	fmt.Fprintf(&b, "✅ Confirm here: %s", c.ConfirmationLink(inv.AccessToken))
	return b.String()
}

// ReminderText produces the reminder body shared by both channels.
func (c *MessageComposer) ReminderText(inv *domain.Invitation, event *domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder: we are expecting you at %s!\n", event.Title)
	fmt.Fprintf(&b, "Date: %s\n", formatDate(event.Date))
	fmt.Fprintf(&b, "Location: %s\n\n", event.Location)
	fmt.Fprintf(&b, "Please confirm your attendance if you have not yet: %s", c.ConfirmationLink(inv.AccessToken))
	return b.String()
}

// ReminderHTML wraps the reminder body in minimal HTML for the email
// channel.
func (c *MessageComposer) ReminderHTML(inv *domain.Invitation, event *domain.Event) string {
	text := c.ReminderText(inv, event)
	return "<p>" + strings.ReplaceAll(template.HTMLEscapeString(text), "\n", "<br>") + "</p>"
}
