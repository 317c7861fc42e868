package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/yoockh/mockmate/internal/models"
)

const DefaultStream = "session:events"

type Publisher interface {
	Publish(ctx context.Context, ev models.SessionEvent) error
}

// UserChannel is the pub/sub channel carrying session events for one user.
func UserChannel(userID string) string { return "user:" + userID + ":sessions" }

// RedisStreamPublisher appends events to a Redis stream; the session event
// worker pool fans them out.
type RedisStreamPublisher struct {
	rdb    *redis.Client
	stream string
}

func NewRedisStreamPublisher(rdb *redis.Client, stream string) *RedisStreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamPublisher{rdb: rdb, stream: stream}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, ev models.SessionEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 100000,
		Approx: true,
		Values: map[string]any{
			"session_id": ev.SessionID,
			"type":       string(ev.Type),
			"payload":    string(b),
		},
	}).Err()
}

// Nop drops every event; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.SessionEvent) error { return nil }

// Decode parses the payload field written by RedisStreamPublisher.
func Decode(values map[string]any) (models.SessionEvent, bool) {
	var ev models.SessionEvent
	raw, _ := values["payload"].(string)
	if raw == "" {
		return ev, false
	}
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return ev, false
	}
	if ev.SessionID == "" || ev.InterviewerID == "" || ev.IntervieweeID == "" {
		return ev, false
	}
	return ev, true
}
