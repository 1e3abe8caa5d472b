// Package objectstore mirrors generated audio into a NATS JetStream object
// store bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	bucketDescriptionFmt = "Generated speech audio mirrored by the %s bucket."
	contentTypeHeader    = "Content-Type"
	contentTypeMPEG      = "audio/mpeg"
	errFmtBindBucket     = "failed to bind to existing object store bucket '%s': %w"
	errFmtCreateBucket   = "failed to create object store bucket '%s': %w"
	errFmtGetObject      = "failed to get object '%s' from bucket '%s': %w"
	errFmtReadObject     = "failed to read object '%s': %w"
	errFmtCloseObject    = "failed to close object '%s': %w"
	errFmtPutObject      = "failed to put object '%s' to bucket '%s': %w"
	errFmtDeleteObject   = "failed to delete object '%s' from bucket '%s': %w"
)

// NatsObjectStore implements core.ObjectStore on a JetStream object store.
type NatsObjectStore struct {
	jetstreamContext nats.JetStreamContext
	bucket           string
	store            nats.ObjectStore
}

// New creates the bucket, or binds to it when it already exists. A positive
// ttl expires stored objects after that age.
func New(jetstreamContext nats.JetStreamContext, bucketName string, ttl time.Duration) (*NatsObjectStore, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf(bucketDescriptionFmt, bucketName),
		TTL:         ttl,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			return nil, fmt.Errorf(errFmtCreateBucket, bucketName, err)
		}

		store, err = jetstreamContext.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf(errFmtBindBucket, bucketName, err)
		}
	}

	return &NatsObjectStore{
		jetstreamContext: jetstreamContext,
		bucket:           bucketName,
		store:            store,
	}, nil
}

// Download retrieves an object from the NATS object store.
func (n *NatsObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	obj, err := n.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf(errFmtGetObject, key, n.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf(errFmtReadObject, key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf(errFmtCloseObject, key, closeErr)
	}

	return data, nil
}

// Upload saves an audio object to the NATS object store.
func (n *NatsObjectStore) Upload(_ context.Context, key string, data []byte) error {
	_, err := n.store.Put(&nats.ObjectMeta{
		Name:    key,
		Headers: nats.Header{contentTypeHeader: []string{contentTypeMPEG}},
	}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf(errFmtPutObject, key, n.bucket, err)
	}

	return nil
}

// Delete removes an object from the NATS object store.
func (n *NatsObjectStore) Delete(_ context.Context, key string) error {
	err := n.store.Delete(key)
	if err != nil {
		return fmt.Errorf(errFmtDeleteObject, key, n.bucket, err)
	}

	return nil
}
