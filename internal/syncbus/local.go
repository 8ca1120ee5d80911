package syncbus

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClosed is returned for publishes and subscriptions on a closed
// bus.
var ErrClosed = errors.New("sync bus closed")

const localQueueSize = 256

// LocalBus is an in-process Bus for single-process deployments and
// tests. A single dispatcher goroutine delivers messages in publish
// order, so Publish never runs handlers on the caller's goroutine and
// two views sharing one bus cannot block each other mid-operation.
type LocalBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(Message)
	closed   bool

	queue chan Message
	done  chan struct{}
}

// NewLocalBus creates an empty in-process bus and starts its
// dispatcher.
func NewLocalBus() *LocalBus {
	b := &LocalBus{
		handlers: make(map[int]func(Message)),
		queue:    make(chan Message, localQueueSize),
		done:     make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *LocalBus) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case msg := <-b.queue:
			b.mu.RLock()
			handlers := make([]func(Message), 0, len(b.handlers))
			for _, h := range b.handlers {
				handlers = append(handlers, h)
			}
			b.mu.RUnlock()
			for _, h := range handlers {
				h(msg)
			}
		}
	}
}

// Publish queues msg for delivery to every registered handler. Delivery
// is best-effort: a message is dropped when the queue is full, costing
// receivers staleness until the next broadcast.
func (b *LocalBus) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	select {
	case b.queue <- msg:
	default:
		log.Warn().Str("message_id", msg.ID).Msg("local bus queue full, dropping message")
	}
	return nil
}

// Subscribe registers a handler until the returned function is called.
func (b *LocalBus) Subscribe(handler func(Message)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}, nil
}

// Close stops the dispatcher and drops all handlers. Close is
// idempotent.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.handlers = make(map[int]func(Message))
	close(b.done)
	return nil
}
