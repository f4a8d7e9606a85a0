// Package notify alerts studio staff when a conversation needs a human: booking
// requests to confirm and media the bot cannot read.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/salon-bot/pkg/logging"
)

// Notifier tells the operator that phone needs follow-up.
type Notifier interface {
	NotifyOperator(ctx context.Context, phone, reason string) error
}

// operatorText is the alert body shared by every channel.
func operatorText(phone, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Sprintf("📣 Seguimiento manual para %s", phone)
	}
	return fmt.Sprintf("📣 Seguimiento manual para %s: %s", phone, reason)
}

// LogNotifier writes alerts to the application log.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyOperator(_ context.Context, phone, reason string) error {
	n.logger.Info("operator follow-up needed", "phone", phone, "reason", reason)
	return nil
}

type messageDeliverer interface {
	Deliver(ctx context.Context, phone, text string) error
}

// WhatsAppNotifier messages the operator's own WhatsApp number.
type WhatsAppNotifier struct {
	deliverer     messageDeliverer
	operatorPhone string
}

func NewWhatsAppNotifier(deliverer messageDeliverer, operatorPhone string) *WhatsAppNotifier {
	if deliverer == nil {
		panic("notify: deliverer cannot be nil")
	}
	return &WhatsAppNotifier{deliverer: deliverer, operatorPhone: strings.TrimSpace(operatorPhone)}
}

func (n *WhatsAppNotifier) NotifyOperator(ctx context.Context, phone, reason string) error {
	if n.operatorPhone == "" {
		return errors.New("notify: operator phone not configured")
	}
	if err := n.deliverer.Deliver(ctx, n.operatorPhone, operatorText(phone, reason)); err != nil {
		return fmt.Errorf("notify: whatsapp alert: %w", err)
	}
	return nil
}

// EmailNotifier emails the operator.
type EmailNotifier struct {
	sender EmailSender
	to     string
}

func NewEmailNotifier(sender EmailSender, to string) *EmailNotifier {
	if sender == nil {
		panic("notify: email sender cannot be nil")
	}
	return &EmailNotifier{sender: sender, to: strings.TrimSpace(to)}
}

func (n *EmailNotifier) NotifyOperator(ctx context.Context, phone, reason string) error {
	if n.to == "" {
		return errors.New("notify: operator email not configured")
	}
	body := operatorText(phone, reason)
	return n.sender.Send(ctx, EmailMessage{
		To:      n.to,
		Subject: "Seguimiento manual: " + phone,
		Body:    body,
		HTML:    "<p>" + htmlEscape(body) + "</p>",
	})
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func htmlEscape(s string) string { return htmlEscaper.Replace(s) }

// MultiNotifier fans out to every notifier and joins their errors.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	kept := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			kept = append(kept, n)
		}
	}
	return &MultiNotifier{notifiers: kept}
}

func (m *MultiNotifier) NotifyOperator(ctx context.Context, phone, reason string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.NotifyOperator(ctx, phone, reason); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports how many notifiers are wired.
func (m *MultiNotifier) Len() int { return len(m.notifiers) }
