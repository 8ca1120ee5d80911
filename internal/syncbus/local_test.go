package syncbus

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Vishal-code-E/ipl/internal/models"
)

func recv(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func expectSilence(t *testing.T, ch <-chan Message) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q delivered", msg.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLocalBusFanOut(t *testing.T) {
	bus := NewLocalBus()
	defer bus.Close()

	first := make(chan Message, 1)
	second := make(chan Message, 1)
	if _, err := bus.Subscribe(func(m Message) { first <- m }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if _, err := bus.Subscribe(func(m Message) { second <- m }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	msg := Message{
		ID:     "m1",
		Origin: "view-a",
		Type:   MessageStateUpdate,
		State:  &models.AuctionState{IsActive: true, BidIncrement: 25},
		SentAt: time.Date(2024, 5, 21, 14, 0, 0, 0, time.UTC),
	}
	if err := bus.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for name, ch := range map[string]chan Message{"first": first, "second": second} {
		got := recv(t, ch)
		if got.ID != "m1" || got.Origin != "view-a" || got.Type != MessageStateUpdate {
			t.Errorf("%s subscriber received %+v", name, got)
		}
	}
}

// Messages arrive in publish order.
func TestLocalBusDeliveryOrder(t *testing.T) {
	bus := NewLocalBus()
	defer bus.Close()

	received := make(chan Message, 8)
	if _, err := bus.Subscribe(func(m Message) { received <- m }); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := bus.Publish(ctx, Message{ID: fmt.Sprintf("m%d", i), Type: MessageStateUpdate}); err != nil {
			t.Fatalf("Publish(m%d) error = %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		if got := recv(t, received); got.ID != fmt.Sprintf("m%d", i) {
			t.Fatalf("message %d = %q, want m%d", i, got.ID, i)
		}
	}
}

func TestLocalBusUnsubscribe(t *testing.T) {
	bus := NewLocalBus()
	defer bus.Close()

	kept := make(chan Message, 2)
	dropped := make(chan Message, 2)
	if _, err := bus.Subscribe(func(m Message) { kept <- m }); err != nil {
		t.Fatal(err)
	}
	unsubscribe, err := bus.Subscribe(func(m Message) { dropped <- m })
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := bus.Publish(ctx, Message{ID: "m1", Type: MessageReset}); err != nil {
		t.Fatal(err)
	}
	recv(t, kept)
	recv(t, dropped)

	unsubscribe()
	if err := bus.Publish(ctx, Message{ID: "m2", Type: MessageReset}); err != nil {
		t.Fatal(err)
	}
	if got := recv(t, kept); got.ID != "m2" {
		t.Fatalf("kept subscriber received %q, want m2", got.ID)
	}
	// Handlers for m2 ran before kept saw it, so any delivery to the
	// unsubscribed handler would already be queued.
	expectSilence(t, dropped)
}

func TestLocalBusClosed(t *testing.T) {
	bus := NewLocalBus()
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if err := bus.Publish(context.Background(), Message{ID: "m1"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after close error = %v, want ErrClosed", err)
	}
	if _, err := bus.Subscribe(func(Message) {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe() after close error = %v, want ErrClosed", err)
	}
}

func TestLocalBusHonorsContext(t *testing.T) {
	bus := NewLocalBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.Publish(ctx, Message{ID: "m1"}); err == nil {
		t.Error("Publish() with cancelled context returned nil error")
	}
}
