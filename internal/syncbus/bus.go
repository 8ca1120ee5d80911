// Package syncbus carries auction state between views of the same
// session. Delivery is best-effort and at-most-once: a lost message
// costs nothing but staleness until the next broadcast, and receivers
// treat each payload as authoritative rather than re-reading storage.
package syncbus

import (
	"context"
	"time"

	"github.com/Vishal-code-E/ipl/internal/models"
)

// MessageType discriminates the two message shapes on the bus.
type MessageType string

const (
	// MessageStateUpdate carries a full session snapshot to adopt
	// directly. Partial patches are never sent: a shallow merge of the
	// nested team-state map could silently drop receiver-side keys.
	MessageStateUpdate MessageType = "state_update"

	// MessageReset instructs receivers to reload the session from the
	// persistent store instead of applying a payload.
	MessageReset MessageType = "reset"
)

// Message is one broadcast on the bus. Origin identifies the publishing
// view so receivers can drop their own echoes.
type Message struct {
	ID     string               `json:"id"`
	Origin string               `json:"origin"`
	Type   MessageType          `json:"type"`
	State  *models.AuctionState `json:"state,omitempty"`
	SentAt time.Time            `json:"sent_at"`
}

// Bus is the cross-view broadcast channel.
type Bus interface {
	// Publish sends a message to every subscriber, including the
	// publisher's own subscriptions.
	Publish(ctx context.Context, msg Message) error

	// Subscribe registers a handler and returns a function that removes
	// it.
	Subscribe(handler func(Message)) (func(), error)

	// Close releases the underlying channel.
	Close() error
}
