package ports

import "context"

// PushMessage is a single device notification
type PushMessage struct {
	Token string
	Title string
	Body  string
}

// PushGateway delivers push notifications to devices
type PushGateway interface {
	Send(ctx context.Context, msg PushMessage) error
}
