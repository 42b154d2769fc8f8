package queue

import "context"

// Client publishes fragment parse messages to a queue backend.
// A nil Client means parsing runs in-process instead.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
