package notify

import (
	"context"
)

// Publisher defines the interface for publishing transfer events.
type Publisher interface {
	Publish(ctx context.Context, message Message) error
}
