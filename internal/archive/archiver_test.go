// Package archive_test tests the audio archiver.
package archive_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/edu-content-service/internal/archive"
	"github.com/book-expert/edu-content-service/internal/audio"
	"github.com/book-expert/edu-content-service/internal/objectstore"
	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errMockUpload  = errors.New("mock upload error")
	errMockPublish = errors.New("mock publish error")
	errMockMissing = errors.New("mock object not found")
)

// mockObjectStore is a mock implementation of the ObjectStore interface.
type mockObjectStore struct {
	mutex            sync.Mutex
	uploadShouldFail bool
	uploaded         map[string][]byte
	deletedKeys      []string
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{uploaded: make(map[string][]byte)}
}

func (m *mockObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	data, ok := m.uploaded[key]
	if !ok {
		return nil, errMockMissing
	}

	return data, nil
}

func (m *mockObjectStore) Upload(_ context.Context, key string, data []byte) error {
	if m.uploadShouldFail {
		return errMockUpload
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.uploaded[key] = data

	return nil
}

func (m *mockObjectStore) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.uploaded, key)
	m.deletedKeys = append(m.deletedKeys, key)

	return nil
}

type mockPublisher struct {
	mutex      sync.Mutex
	shouldFail bool
	subjects   []string
	payloads   [][]byte
}

func (m *mockPublisher) Publish(subject string, data []byte) error {
	if m.shouldFail {
		return errMockPublish
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, data)

	return nil
}

func (m *mockPublisher) count() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.payloads)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	t.Cleanup(func() { _ = log.Close() })

	return log
}

func testArtifact(id string) audio.Artifact {
	return audio.Artifact{ID: id, Filename: audio.FilenameFor(id)}
}

func TestArchiver_Archive_Success(t *testing.T) {
	t.Parallel()

	store := newMockObjectStore()
	publisher := &mockPublisher{}
	archiver := archive.New(store, publisher, "audio.created", 2, newTestLogger(t))

	artifact := testArtifact("abc")

	err := archiver.Archive(context.Background(), artifact, []byte("mp3"))
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3"), store.uploaded["audio_abc.mp3"])
	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "audio.created", publisher.subjects[0])

	var event events.AudioChunkCreatedEvent

	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, "abc", event.Header.WorkflowID)
	assert.NotEmpty(t, event.Header.EventID)
	assert.Equal(t, "audio_abc.mp3", event.AudioKey)
	assert.Equal(t, 1, event.PageNumber)
	assert.Equal(t, 1, event.TotalPages)
}

func TestArchiver_Fetch(t *testing.T) {
	t.Parallel()

	store := newMockObjectStore()
	archiver := archive.New(store, &mockPublisher{}, "audio.created", 1, newTestLogger(t))

	_, err := archiver.Fetch(context.Background(), testArtifact("absent"))
	require.ErrorIs(t, err, errMockMissing)

	require.NoError(t, archiver.Archive(context.Background(), testArtifact("kept"), []byte("mp3")))

	data, err := archiver.Fetch(context.Background(), testArtifact("kept"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), data)
}

func TestArchiver_Archive_UploadFailure(t *testing.T) {
	t.Parallel()

	store := newMockObjectStore()
	store.uploadShouldFail = true
	publisher := &mockPublisher{}
	archiver := archive.New(store, publisher, "audio.created", 1, newTestLogger(t))

	err := archiver.Archive(context.Background(), testArtifact("abc"), []byte("mp3"))
	require.ErrorIs(t, err, errMockUpload)
	assert.Equal(t, 0, publisher.count())
}

func TestArchiver_Archive_PublishFailureRollsBack(t *testing.T) {
	t.Parallel()

	store := newMockObjectStore()
	publisher := &mockPublisher{shouldFail: true}
	archiver := archive.New(store, publisher, "audio.created", 1, newTestLogger(t))

	err := archiver.Archive(context.Background(), testArtifact("abc"), []byte("mp3"))
	require.ErrorIs(t, err, errMockPublish)

	assert.Equal(t, []string{"audio_abc.mp3"}, store.deletedKeys)
	assert.Empty(t, store.uploaded)
}

func TestArchiver_SubmitAndClose(t *testing.T) {
	t.Parallel()

	store := newMockObjectStore()
	publisher := &mockPublisher{}
	archiver := archive.New(store, publisher, "audio.created", 2, newTestLogger(t))

	for _, id := range []string{"a", "b", "c", "d"} {
		assert.True(t, archiver.Submit(testArtifact(id), []byte(id)))
	}

	archiver.Close()

	assert.Equal(t, 4, publisher.count())
	assert.False(t, archiver.Submit(testArtifact("late"), []byte("late")))
}

func createTestNatsClient(t *testing.T) *nats.Conn {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	server := test.RunServer(&opts)

	natsConnection, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)

	t.Cleanup(func() {
		natsConnection.Close()
		server.Shutdown()
	})

	return natsConnection
}

func TestArchiver_WithNATS(t *testing.T) {
	t.Parallel()

	natsConnection := createTestNatsClient(t)

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "EDU_AUDIO_TEST", 0)
	require.NoError(t, err)

	subscription, err := natsConnection.SubscribeSync("audio.created")
	require.NoError(t, err)

	archiver := archive.New(store, natsConnection, "audio.created", 1, newTestLogger(t))

	artifact := testArtifact("nats-id")

	err = archiver.Archive(context.Background(), artifact, []byte("nats-mp3"))
	require.NoError(t, err)

	msg, err := subscription.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var event events.AudioChunkCreatedEvent

	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, "nats-id", event.Header.WorkflowID)

	assert.Equal(t, artifact.Filename, event.AudioKey)

	data, err := archiver.Fetch(context.Background(), artifact)
	require.NoError(t, err)
	assert.Equal(t, []byte("nats-mp3"), data)
}
