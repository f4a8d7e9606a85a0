package bootstrap

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"

	appconfig "github.com/wolfman30/salon-bot/internal/config"
	"github.com/wolfman30/salon-bot/pkg/logging"
)

type discardDeliverer struct{}

func (discardDeliverer) Deliver(context.Context, string, string) error { return nil }

func TestBuildOperatorNotifier(t *testing.T) {
	logger := logging.Discard()

	assert.Equal(t, 1, BuildOperatorNotifier(nil, nil, nil, logger).Len())
	assert.Equal(t, 1, BuildOperatorNotifier(&appconfig.Config{OperatorPhone: "521"}, nil, nil, logger).Len())

	cfg := &appconfig.Config{
		OperatorPhone:       "5213300000000",
		OperatorEmail:       "staff@beautyblossoms.mx",
		NotifyEmailProvider: "stub",
	}
	assert.Equal(t, 3, BuildOperatorNotifier(cfg, discardDeliverer{}, nil, logger).Len())

	cfg.NotifyEmailProvider = "sendgrid"
	assert.Equal(t, 2, BuildOperatorNotifier(cfg, discardDeliverer{}, nil, logger).Len())

	cfg.NotifyEmailProvider = "ses"
	assert.Equal(t, 2, BuildOperatorNotifier(cfg, discardDeliverer{}, nil, logger).Len())
	assert.Equal(t, 3, BuildOperatorNotifier(cfg, discardDeliverer{}, &aws.Config{Region: "us-east-1"}, logger).Len())
}
