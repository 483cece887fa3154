// Package store provides the shared key-value store used for cross-instance
// cache invalidation and activation locking.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("store: key not found")

// Message represents a message received from a subscription.
type Message struct {
	Channel string
	Payload []byte
}

// Subscription represents an active subscription to a channel.
type Subscription interface {
	// Channel returns the channel for receiving messages.
	Channel() <-chan *Message
	// Close unsubscribes and releases resources.
	Close() error
}

// Store is a key-value store abstraction. The memory implementation serves
// single-node deployments; the Redis implementation makes activation locks
// and cache invalidation work across instances.
type Store interface {
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	// SetNX sets key to value if it does not exist, returning true when the
	// value was set. This is the advisory lock primitive used to serialize
	// concurrent activations.
	SetNX(key string, value []byte, ttl time.Duration) (bool, error)
	Publish(channel string, message []byte) error
	Subscribe(channel string) (Subscription, error)
	Clear() error
	Close() error
}
