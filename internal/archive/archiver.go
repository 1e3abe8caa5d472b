// Package archive mirrors generated audio into an object store and announces
// each new file with an AudioChunkCreatedEvent.
//
// Archiving is best effort. Failures are logged and never affect the
// request that produced the audio.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/book-expert/edu-content-service/internal/audio"
	"github.com/book-expert/edu-content-service/internal/core"
	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

const (
	archiveTimeout = 30 * time.Second
	singlePage     = 1
)

const (
	errFmtUpload         = "failed to upload audio '%s': %w"
	errFmtFetch          = "failed to fetch archived audio '%s': %w"
	errFmtMarshalEvent   = "failed to marshal audio created event: %w"
	errFmtPublishEvent   = "failed to publish audio created event on %s: %w"
	logFmtArchived       = "Archived audio %s as %s"
	logFmtArchiveFailed  = "Failed to archive audio %s: %v"
	logFmtRollbackFailed = "Failed to remove orphaned archive object %s: %v"
)

// Archiver uploads audio artifacts and publishes a creation event for each.
type Archiver struct {
	store     core.ObjectStore
	publisher core.EventPublisher
	subject   string
	log       *logger.Logger
	slots     chan struct{}
	waitGroup sync.WaitGroup
	mutex     sync.Mutex
	closed    bool
}

// New creates an Archiver that runs at most workers uploads at once.
func New(
	store core.ObjectStore,
	publisher core.EventPublisher,
	subject string,
	workers int,
	log *logger.Logger,
) *Archiver {
	if workers < 1 {
		workers = 1
	}

	return &Archiver{
		store:     store,
		publisher: publisher,
		subject:   subject,
		log:       log,
		slots:     make(chan struct{}, workers),
	}
}

// Archive uploads the artifact's audio under its filename and publishes an
// AudioChunkCreatedEvent whose workflow id is the audio id. When the event
// cannot be published the uploaded object is removed again.
func (a *Archiver) Archive(ctx context.Context, artifact audio.Artifact, data []byte) error {
	err := a.store.Upload(ctx, artifact.Filename, data)
	if err != nil {
		return fmt.Errorf(errFmtUpload, artifact.Filename, err)
	}

	err = a.publish(artifact)
	if err != nil {
		deleteErr := a.store.Delete(ctx, artifact.Filename)
		if deleteErr != nil {
			a.log.Warn(logFmtRollbackFailed, artifact.Filename, deleteErr)
		}

		return err
	}

	a.log.Info(logFmtArchived, artifact.ID, artifact.Filename)

	return nil
}

// Fetch returns the archived audio of the artifact.
func (a *Archiver) Fetch(ctx context.Context, artifact audio.Artifact) ([]byte, error) {
	data, err := a.store.Download(ctx, artifact.Filename)
	if err != nil {
		return nil, fmt.Errorf(errFmtFetch, artifact.Filename, err)
	}

	return data, nil
}

// Submit archives the artifact in the background. It returns false when the
// archiver has been closed.
func (a *Archiver) Submit(artifact audio.Artifact, data []byte) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.closed {
		return false
	}

	a.waitGroup.Add(1)

	go func() {
		defer a.waitGroup.Done()

		a.slots <- struct{}{}

		defer func() { <-a.slots }()

		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		err := a.Archive(ctx, artifact, data)
		if err != nil {
			a.log.Error(logFmtArchiveFailed, artifact.ID, err)
		}
	}()

	return true
}

// Close stops accepting work and waits for pending uploads to finish.
func (a *Archiver) Close() {
	a.mutex.Lock()
	a.closed = true
	a.mutex.Unlock()

	a.waitGroup.Wait()
}

func (a *Archiver) publish(artifact audio.Artifact) error {
	event := events.AudioChunkCreatedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: artifact.ID,
			EventID:    uuid.NewString(),
		},
		AudioKey:   artifact.Filename,
		PageNumber: singlePage,
		TotalPages: singlePage,
	}

	data, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf(errFmtMarshalEvent, err)
	}

	err = a.publisher.Publish(a.subject, data)
	if err != nil {
		return fmt.Errorf(errFmtPublishEvent, a.subject, err)
	}

	return nil
}
