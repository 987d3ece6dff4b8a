package events

// Subscriber receives every event published after it subscribed.
// Send must not block for long; a slow subscriber delays the others.
type Subscriber interface {
	Send(Event) error
	Close() error
}
