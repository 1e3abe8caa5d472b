// Package core defines the infrastructure ports shared by the service
// components.
package core

import "context"

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes a serialized event on a subject.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}
