package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/redis/go-redis/v9"
)

// -----------------------------------------------------------------------------
// RedisTransport
// -----------------------------------------------------------------------------

// RedisTransport reads the tree stored at key <prefix><path> and follows the
// Pub/Sub channel of the same name, on which producers publish the whole tree
// after every write.
type RedisTransport struct {
	Client *redis.Client
	Prefix string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisTransport(cfg models.MFeedConfig, log *logger.Logger) *RedisTransport {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewRedisTransportWithClient(client, cfg.RedisPrefix, log)
}

func NewRedisTransportWithClient(client *redis.Client, prefix string, log *logger.Logger) *RedisTransport {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisTransport{Client: client, Prefix: prefix, Logger: log}
}

func (t *RedisTransport) Name() string {
	return "redis"
}

// -----------------------------------------------------------------------------

// Listen subscribes before reading the stored tree so no publish is missed.
// go-redis re-establishes the Pub/Sub connection on its own.
func (t *RedisTransport) Listen(ctx context.Context, path string, onValue func([]byte), onError func(error)) (func(), error) {
	key := t.Prefix + path

	ctx, cancel := context.WithCancel(ctx)
	pubsub := t.Client.Subscribe(ctx, key)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", key, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		value, err := t.Client.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			t.Logger.Debug("No stored tree at %s yet", key)
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			onError(fmt.Errorf("read %s: %w", key, err))
		default:
			onValue(value)
		}

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				onValue([]byte(msg.Payload))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if err := pubsub.Close(); err != nil {
				t.Logger.Debug("Closing subscription %s: %v", key, err)
			}
			<-done
		})
	}, nil
}

// -----------------------------------------------------------------------------

// Close releases the underlying client.
func (t *RedisTransport) Close() error {
	return t.Client.Close()
}
