package thumbnail_test

import (
	"context"
	"io"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/thumbflow/internal/thumbnail"
	"github.com/your-org/thumbflow/pkg/storage/objectstore"
)

// stubMessageSource serves a fixed sequence of messages, then io.EOF as a
// closed reader would, and records every committed message.
type stubMessageSource struct {
	messages  []kafkago.Message
	fetched   int
	committed []kafkago.Message
}

func (s *stubMessageSource) Fetch(ctx context.Context) (kafkago.Message, error) {
	if s.fetched >= len(s.messages) {
		return kafkago.Message{}, io.EOF
	}
	msg := s.messages[s.fetched]
	s.fetched++
	return msg, nil
}

func (s *stubMessageSource) Commit(ctx context.Context, msgs ...kafkago.Message) error {
	s.committed = append(s.committed, msgs...)
	return nil
}

func TestWorker_CommitsPoisonMessageAndContinues(t *testing.T) {
	// Arrange
	store := newMockObjectStore()
	records := newMockRecordStore()
	service := newService(store, records)

	source := &objectstore.Object{
		ObjectInfo: objectstore.ObjectInfo{Key: "cat.png", Size: 512, LastModified: lastModified},
		Data:       pngBytes(t, 80, 60),
	}
	store.On("Get", mock.Anything, "uploads", "cat.png").Return(source, nil)
	store.On("Put", mock.Anything, "thumbs", "thumbnails/cat.png.jpg", mock.Anything, mock.Anything, "image/jpeg").Return(nil)
	records.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	consumer := &stubMessageSource{
		messages: []kafkago.Message{
			{Topic: "uploads", Offset: 7, Value: []byte("not json at all")},
			{Topic: "uploads", Offset: 8, Value: []byte(`{"Records":[{"eventName":"s3:ObjectCreated:Put","s3":{"bucket":{"name":"uploads"},"object":{"key":"cat.png","size":512}}}]}`)},
		},
	}
	worker := thumbnail.NewWorker(consumer, service, zap.NewNop())

	// Act
	err := worker.Run(context.Background())

	// Assert: the unparseable message is committed, not retried, and the
	// following notification is still processed to completion.
	require.NoError(t, err)
	require.Len(t, consumer.committed, 2)
	assert.Equal(t, int64(7), consumer.committed[0].Offset)
	assert.Equal(t, int64(8), consumer.committed[1].Offset)
	store.AssertExpectations(t)
	records.AssertExpectations(t)
}

func TestWorker_StopsWhenContextCanceled(t *testing.T) {
	consumer := &stubMessageSource{}
	worker := thumbnail.NewWorker(consumer, newService(newMockObjectStore(), newMockRecordStore()), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// The stub returns io.EOF immediately; either way Run must return nil.
	assert.NoError(t, worker.Run(ctx))
}
