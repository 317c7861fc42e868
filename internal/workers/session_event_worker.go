package workers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/mockmate/internal/cache"
	"github.com/yoockh/mockmate/internal/events"
	"golang.org/x/sync/errgroup"
)

// SessionEventWorkerPool consumes the session event stream with a consumer
// group. For each event it drops the interviewer's cached workload count
// and forwards the payload to both participants' feeds.
type SessionEventWorkerPool struct {
	Redis      *redis.Client
	Feed       events.Notifier
	Cache      cache.Cache
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *SessionEventWorkerPool) defaults() error {
	if p.Redis == nil || p.Feed == nil {
		return errors.New("SessionEventWorkerPool missing dependency: Redis/Feed must be set")
	}
	if p.Stream == "" {
		p.Stream = events.DefaultStream
	}
	if p.Group == "" {
		p.Group = "session-event-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	return nil
}

// Run blocks until ctx is cancelled.
func (p *SessionEventWorkerPool) Run(ctx context.Context) error {
	if err := p.defaults(); err != nil {
		return err
	}

	err := p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		g.Go(func() error {
			p.runConsumer(ctx, consumer)
			return nil
		})
	}
	return g.Wait()
}

func (p *SessionEventWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("xreadgroup failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.Handle(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

// Handle processes one stream entry. Malformed entries are logged and
// dropped so they are acked rather than redelivered forever.
func (p *SessionEventWorkerPool) Handle(ctx context.Context, msg redis.XMessage) {
	log := p.Logger.WithField("redis_id", msg.ID)

	ev, ok := events.Decode(msg.Values)
	if !ok {
		log.Warn("dropping malformed session event")
		return
	}
	log = log.WithFields(logrus.Fields{
		"session_id": ev.SessionID,
		"event":      ev.Type,
		"status":     ev.Status,
	})

	if p.Cache != nil {
		if err := p.Cache.Del(ctx, cache.WorkloadKey(ev.InterviewerID)); err != nil {
			log.WithError(err).Warn("workload cache invalidation failed")
		}
	}

	payload, _ := msg.Values["payload"].(string)
	for _, uid := range []string{ev.IntervieweeID, ev.InterviewerID} {
		if err := p.Feed.Notify(ctx, uid, []byte(payload)); err != nil {
			log.WithError(err).WithField("user_id", uid).Warn("session event fan-out failed")
		}
	}
	log.Debug("session event delivered")
}
