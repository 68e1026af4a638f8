package events

// Message is one received event: the concrete subject it was published on
// plus the raw JSON payload.
type Message struct {
	Topic string
	Data  []byte
}

// Subscriber receives event messages for a topic. Topics support NATS
// wildcard syntax, so "gantry.>" matches every event the server publishes.
type Subscriber interface {
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}

var _ Subscriber = (*NATSSubscriber)(nil)
var _ Publisher = (*NATSPublisher)(nil)
var _ Publisher = (*NoopPublisher)(nil)
