package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/yoockh/mockmate/internal/models"
)

// Notifier delivers an encoded event to one user's feed.
type Notifier interface {
	Notify(ctx context.Context, userID string, payload []byte) error
}

// Subscriber opens a user's feed. The returned channel is closed once ctx
// is done or the feed fails.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan []byte, error)
}

type RedisFeed struct {
	rdb *redis.Client
}

func NewRedisFeed(rdb *redis.Client) *RedisFeed { return &RedisFeed{rdb: rdb} }

func (f *RedisFeed) Notify(ctx context.Context, userID string, payload []byte) error {
	return f.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, userID string) (<-chan []byte, error) {
	ps := f.rdb.Subscribe(ctx, UserChannel(userID))
	// wait for the subscription confirmation so no event is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			m, err := ps.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			select {
			case out <- []byte(m.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Hub is an in-process Publisher, Notifier and Subscriber for the memory
// storage driver. Slow subscribers drop events rather than block.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan []byte]struct{})}
}

func (h *Hub) Publish(ctx context.Context, ev models.SessionEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	for _, uid := range []string{ev.IntervieweeID, ev.InterviewerID} {
		_ = h.Notify(ctx, uid, b)
	}
	return nil
}

func (h *Hub) Notify(_ context.Context, userID string, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, userID string) (<-chan []byte, error) {
	ch := make(chan []byte, 16)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan []byte]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[userID], ch)
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
		h.mu.Unlock()
	}()
	return ch, nil
}
