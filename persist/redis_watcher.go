package persist

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisWatcher broadcasts policy changes over a Redis pub/sub channel so
// peer engines sharing a store can reload. Each watcher tags its messages
// with an instance id and ignores its own, the local model is already
// current when Update is called.
type RedisWatcher struct {
	client  *redis.Client
	channel string
	id      string
	sub     *redis.PubSub

	mu       sync.Mutex
	callback func(rev string)
	closed   bool
}

func NewRedisWatcher(client *redis.Client, channel string) (*RedisWatcher, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	w := &RedisWatcher{
		client:  client,
		channel: channel,
		id:      hex.EncodeToString(buf),
	}
	w.sub = client.Subscribe(context.Background(), channel)
	// force the subscription so messages published right after New are seen
	if _, err := w.sub.Receive(context.Background()); err != nil {
		_ = w.sub.Close()
		return nil, err
	}
	go w.listen()
	return w, nil
}

func (w *RedisWatcher) listen() {
	for msg := range w.sub.Channel() {
		sender, rev, ok := strings.Cut(msg.Payload, ":")
		if !ok || sender == w.id {
			continue
		}
		w.mu.Lock()
		cb := w.callback
		w.mu.Unlock()
		if cb != nil {
			cb(rev)
		}
	}
}

func (w *RedisWatcher) SetUpdateCallback(fn func(rev string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = fn
	return nil
}

func (w *RedisWatcher) Update() error {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	rev := hex.EncodeToString(buf)
	return w.client.Publish(context.Background(), w.channel, w.id+":"+rev).Err()
}

func (w *RedisWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.sub.Close()
}
