package whatsapp

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/smp-yps/assignment-api/pkg/config"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

// Client sends WhatsApp messages through the Twilio REST API.
type Client struct {
	api  *twilio.RestClient
	from string
}

// NewClient builds a WhatsApp client from Twilio credentials. A nil
// client is returned when credentials are absent so callers can treat
// the provider as unconfigured instead of failing at startup.
func NewClient(cfg config.TwilioConfig) *Client {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppNumber == "" {
		return nil
	}
	api := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Client{api: api, from: cfg.WhatsAppNumber}
}

// SendWhatsApp delivers body to the given E.164 number and returns the
// provider message SID and delivery status.
func (c *Client) SendWhatsApp(ctx context.Context, to, body string) (string, string, error) {
	if c == nil || c.api == nil {
		return "", "", appErrors.ErrProviderNotConfigured
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(body)

	msg, err := c.api.Api.CreateMessage(params)
	if err != nil {
		return "", "", fmt.Errorf("create whatsapp message: %w", err)
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	status := "sent"
	if msg.Status != nil {
		status = *msg.Status
	}
	return sid, status, nil
}
