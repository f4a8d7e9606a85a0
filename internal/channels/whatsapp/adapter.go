package whatsapp

import (
	"context"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

// Adapter delivers bot replies over WhatsApp.
type Adapter struct {
	client *Client
	logger *logging.Logger
}

func NewAdapter(client *Client, logger *logging.Logger) *Adapter {
	if client == nil {
		panic("whatsapp: client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{client: client, logger: logger}
}

// Deliver sends text to phone.
func (a *Adapter) Deliver(ctx context.Context, phone, text string) error {
	resp, err := a.client.SendText(ctx, phone, text)
	if err != nil {
		a.logger.Error("whatsapp: failed to send message", "to", phone, "error", err)
		return err
	}
	a.logger.Info("whatsapp: message sent", "to", phone, "message_id", resp.MessageID())
	return nil
}
