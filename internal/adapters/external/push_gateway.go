package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// HTTPClient interface for HTTP requests (for testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	fcmMessagingScope   = "https://www.googleapis.com/auth/firebase.messaging"
	fcmEndpointTemplate = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

// FCMPushGatewayAdapter implements PushGateway port against the FCM HTTP v1 API.
// Requests carry short-lived OAuth2 access tokens minted from a service account.
type FCMPushGatewayAdapter struct {
	endpoint string
	tokens   oauth2.TokenSource
	client   HTTPClient
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string          `json:"token"`
	Notification fcmNotification `json:"notification"`
	Android      fcmAndroid      `json:"android"`
	APNS         fcmAPNS         `json:"apns"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority     string                 `json:"priority"`
	Notification fcmAndroidNotification `json:"notification"`
}

type fcmAndroidNotification struct {
	Sound     string `json:"sound"`
	ChannelID string `json:"channel_id"`
}

type fcmAPNS struct {
	Headers map[string]string `json:"headers"`
	Payload fcmAPNSPayload    `json:"payload"`
}

type fcmAPNSPayload struct {
	APS fcmAPS `json:"aps"`
}

type fcmAPS struct {
	Sound string `json:"sound"`
}

// NewFCMPushGatewayAdapter creates a new push gateway adapter. Without a
// credentials file the adapter is returned unconfigured.
func NewFCMPushGatewayAdapter(ctx context.Context, cfg ports.PushConfig) (*FCMPushGatewayAdapter, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	g := &FCMPushGatewayAdapter{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
	if cfg.CredentialsFile == "" {
		return g, nil
	}

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to read FCM credentials file", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, fcmMessagingScope)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to parse FCM credentials", err)
	}
	if g.endpoint == "" {
		if creds.ProjectID == "" {
			return nil, errors.NewConfigurationError("FCM credentials do not name a project_id", nil)
		}
		g.endpoint = fmt.Sprintf(fcmEndpointTemplate, creds.ProjectID)
	}
	g.tokens = creds.TokenSource
	return g, nil
}

// WithHTTPClient replaces the HTTP client used for message delivery
func (g *FCMPushGatewayAdapter) WithHTTPClient(client HTTPClient) *FCMPushGatewayAdapter {
	g.client = client
	return g
}

// WithTokenSource replaces the access token source
func (g *FCMPushGatewayAdapter) WithTokenSource(tokens oauth2.TokenSource) *FCMPushGatewayAdapter {
	g.tokens = tokens
	return g
}

// Endpoint returns the messages:send URL
func (g *FCMPushGatewayAdapter) Endpoint() string {
	return g.endpoint
}

// Configured reports whether an endpoint and a token source are set
func (g *FCMPushGatewayAdapter) Configured() bool {
	return g.endpoint != "" && g.tokens != nil
}

// Send delivers one notification to a device token
func (g *FCMPushGatewayAdapter) Send(ctx context.Context, msg ports.PushMessage) error {
	if msg.Token == "" {
		return errors.NewValidationError("device token cannot be empty")
	}
	if !g.Configured() {
		return errors.NewConfigurationError("push gateway is not configured", nil)
	}

	payload := fcmRequest{Message: fcmMessage{
		Token:        msg.Token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Android: fcmAndroid{
			Priority:     "high",
			Notification: fcmAndroidNotification{Sound: "default", ChannelID: "default"},
		},
		APNS: fcmAPNS{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: fcmAPNSPayload{APS: fcmAPS{Sound: "default"}},
		},
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewPushError("failed to encode push message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.NewPushError("failed to build push request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := g.tokens.Token()
	if err != nil {
		return errors.NewPushError("failed to obtain FCM access token", err)
	}
	token.SetAuthHeader(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.NewPushError("failed to reach push gateway", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewPushError(
			fmt.Sprintf("push gateway returned status %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(detail)),
		)
	}
	return nil
}
