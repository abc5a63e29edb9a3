package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"event-ticketing/internal/ticketing"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 3 * time.Second

// RedisPublisher forwards committed notifications to a Redis pub/sub channel.
// Engine subscribers run under the engine lock, so Subscriber only enqueues and
// a background goroutine does the network round trip.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	queue   chan ticketing.Envelope

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewRedisClient builds a client for addr and checks connectivity
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// NewRedisPublisher creates a publisher with a queue of the given size
func NewRedisPublisher(client *redis.Client, channel string, buffer int) *RedisPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		queue:   make(chan ticketing.Envelope, buffer),
		done:    make(chan struct{}),
	}
}

// Subscriber returns the engine callback. Envelopes are dropped when the queue is full.
func (p *RedisPublisher) Subscriber() ticketing.Subscriber {
	return func(env ticketing.Envelope) {
		select {
		case <-p.done:
		case p.queue <- env:
		default:
			log.Printf("[Notify] Redis queue full, dropping notification seq=%d kind=%s", env.Seq, env.Notification.Kind())
		}
	}
}

// Start launches the publishing goroutine
func (p *RedisPublisher) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		log.Printf("[Notify] Publishing notifications to Redis channel '%s'", p.channel)
		for {
			select {
			case <-p.done:
				return
			case env := <-p.queue:
				p.publish(env)
			}
		}
	}()
}

// Close stops the publisher. Queued envelopes that were not yet sent are discarded.
func (p *RedisPublisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

// Pending reports how many envelopes are waiting to be published
func (p *RedisPublisher) Pending() int {
	return len(p.queue)
}

func (p *RedisPublisher) publish(env ticketing.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[Notify] Failed to marshal notification seq=%d: %v", env.Seq, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		log.Printf("[Notify] Failed to publish notification seq=%d: %v", env.Seq, err)
	}
}
