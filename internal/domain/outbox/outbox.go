package outbox

import "context"

// Event is anything published on the bus; EventName is the routing key.
type Event interface {
	EventName() string
}

type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// PublishFunc adapts a plain function to Publisher.
type PublishFunc func(ctx context.Context, e Event) error

func (f PublishFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }
