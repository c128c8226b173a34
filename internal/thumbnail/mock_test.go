package thumbnail_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/your-org/thumbflow/pkg/storage/objectstore"
	"github.com/your-org/thumbflow/pkg/storage/recordstore"
)

type mockObjectStore struct {
	mock.Mock
	// putPayloads records the bytes written per Put call, in order.
	putPayloads [][]byte
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{}
}

func (m *mockObjectStore) Get(ctx context.Context, bucket, key string) (*objectstore.Object, error) {
	args := m.Called(ctx, bucket, key)
	if obj := args.Get(0); obj != nil {
		return obj.(*objectstore.Object), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectStore) Stat(ctx context.Context, bucket, key string) (*objectstore.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key)
	if info := args.Get(0); info != nil {
		return info.(*objectstore.ObjectInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectStore) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(reader)
	m.putPayloads = append(m.putPayloads, data)
	args := m.Called(ctx, bucket, key, data, size, contentType)
	return args.Error(0)
}

func (m *mockObjectStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *mockObjectStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{}
}

func (m *mockPublisher) Publish(ctx context.Context, key []byte, value []byte, headers map[string]string) error {
	args := m.Called(ctx, key, value, headers)
	return args.Error(0)
}

type mockRecordStore struct {
	mock.Mock
	// upserted records every record passed to Upsert, in order.
	upserted []recordstore.ImageRecord
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{}
}

func (m *mockRecordStore) Upsert(ctx context.Context, rec recordstore.ImageRecord) error {
	m.upserted = append(m.upserted, rec)
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRecordStore) Get(ctx context.Context, imageName string) (*recordstore.ImageRecord, error) {
	args := m.Called(ctx, imageName)
	if rec := args.Get(0); rec != nil {
		return rec.(*recordstore.ImageRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecordStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRecordStore) Close() {
	m.Called()
}
