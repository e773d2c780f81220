package external

import (
	"context"
	"time"

	"luna.app/internal/ports"
)

// PushGatewayLoggingDecorator decorates a push gateway with structured logging
type PushGatewayLoggingDecorator struct {
	gateway ports.PushGateway
	logger  ports.Logger
}

func NewPushGatewayLoggingDecorator(gateway ports.PushGateway, logger ports.Logger) ports.PushGateway {
	return &PushGatewayLoggingDecorator{gateway: gateway, logger: logger}
}

// Send wraps the delivery with request and outcome logs. Tokens are masked.
func (d *PushGatewayLoggingDecorator) Send(ctx context.Context, msg ports.PushMessage) error {
	d.logger.Debug("Push delivery started",
		ports.F("token", maskToken(msg.Token)),
		ports.F("title", msg.Title),
		ports.F("event", "request"))

	start := time.Now()
	err := d.gateway.Send(ctx, msg)
	duration := time.Since(start)

	if err != nil {
		d.logger.Error("Push delivery failed",
			ports.F("token", maskToken(msg.Token)),
			ports.F("title", msg.Title),
			ports.F("event", "error"),
			ports.F("duration_ms", duration.Milliseconds()),
			ports.F("error", err.Error()))
		return err
	}

	d.logger.Info("Push delivery completed",
		ports.F("token", maskToken(msg.Token)),
		ports.F("title", msg.Title),
		ports.F("event", "response"),
		ports.F("duration_ms", duration.Milliseconds()))
	return nil
}

// EmailProviderLoggingDecorator decorates an email provider with structured logging
type EmailProviderLoggingDecorator struct {
	provider ports.EmailProvider
	logger   ports.Logger
}

func NewEmailProviderLoggingDecorator(provider ports.EmailProvider, logger ports.Logger) ports.EmailProvider {
	return &EmailProviderLoggingDecorator{provider: provider, logger: logger}
}

func (d *EmailProviderLoggingDecorator) SendEmail(ctx context.Context, params ports.EmailParams) error {
	start := time.Now()
	err := d.provider.SendEmail(ctx, params)
	duration := time.Since(start)

	if err != nil {
		d.logger.Error("Email delivery failed",
			ports.F("to", params.To),
			ports.F("subject", params.Subject),
			ports.F("event", "error"),
			ports.F("duration_ms", duration.Milliseconds()),
			ports.F("error", err.Error()))
		return err
	}

	d.logger.Info("Email delivery completed",
		ports.F("to", params.To),
		ports.F("subject", params.Subject),
		ports.F("event", "response"),
		ports.F("duration_ms", duration.Milliseconds()))
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
