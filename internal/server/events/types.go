// Package events fans catalog lifecycle notifications out to the
// real-time transports. Catalog hooks and handlers publish into a Broker;
// every transport registers as a Subscriber.
package events

import "time"

// EventType names a catalog notification.
type EventType string

// Catalog notifications.
const (
	CatalogUpdated      EventType = "catalog.updated"
	CatalogUpdateFailed EventType = "catalog.update_failed"
	UpdateRequested     EventType = "catalog.update_requested"
	ClientConnected     EventType = "client.connected"
)

// Event is one notification. Seq increases by one per accepted event.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
