package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/yoockh/mockmate/internal/models"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case b, ok := <-ch:
		if !ok {
			t.Fatalf("feed closed")
		}
		return b
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
	return nil
}

func TestHubDeliversToBothParticipants(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	a, _ := h.Subscribe(ctx, "a")
	b, _ := h.Subscribe(ctx, "b")
	other, _ := h.Subscribe(ctx, "c")

	ev := models.SessionEvent{Type: models.EventSessionCreated, SessionID: "s1", IntervieweeID: "a", InterviewerID: "b"}
	if err := h.Publish(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, ch := range []<-chan []byte{a, b} {
		var got models.SessionEvent
		if err := json.Unmarshal(receive(t, ch), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.SessionID != "s1" || got.Type != models.EventSessionCreated {
			t.Fatalf("unexpected event %+v", got)
		}
	}

	select {
	case <-other:
		t.Fatalf("unrelated user received an event")
	default:
	}
}

func TestHubClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	ch, _ := h.Subscribe(ctx, "a")
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed feed")
		}
	case <-time.After(time.Second):
		t.Fatalf("feed not closed after cancel")
	}

	// publishing after unsubscribe must not panic
	_ = h.Notify(context.Background(), "a", []byte("{}"))
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	ch, _ := h.Subscribe(ctx, "a")
	for i := 0; i < 100; i++ {
		_ = h.Notify(ctx, "a", []byte("{}"))
	}
	if n := len(ch); n != cap(ch) {
		t.Fatalf("expected buffer full (%d), got %d", cap(ch), n)
	}
}
