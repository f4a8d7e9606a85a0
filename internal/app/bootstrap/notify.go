package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/internal/conversation"
	"github.com/wolfman30/salon-bot/internal/notify"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

// BuildOperatorNotifier fans manual follow-ups out to the log, the operator's
// WhatsApp and email, as configured. deliverer and awsCfg may be nil.
func BuildOperatorNotifier(cfg *appconfig.Config, deliverer conversation.Deliverer, awsCfg *aws.Config, logger *logging.Logger) *notify.MultiNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	if cfg == nil {
		return notify.NewMultiNotifier(notifiers...)
	}

	if phone := strings.TrimSpace(cfg.OperatorPhone); phone != "" && deliverer != nil {
		notifiers = append(notifiers, notify.NewWhatsAppNotifier(deliverer, phone))
	}

	if to := strings.TrimSpace(cfg.OperatorEmail); to != "" {
		if sender := buildEmailSender(cfg, awsCfg, logger); sender != nil {
			notifiers = append(notifiers, notify.NewEmailNotifier(sender, to))
		}
	}
	return notify.NewMultiNotifier(notifiers...)
}

func buildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.NotifyEmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; email notifications disabled")
	case "ses":
		if awsCfg == nil {
			logger.Warn("ses selected without aws config; email notifications disabled")
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case "stub":
		return notify.NewStubEmailSender(logger)
	}
	return nil
}
