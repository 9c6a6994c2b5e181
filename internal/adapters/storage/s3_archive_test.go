package storage_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/SscSPs/budget_approval_app/internal/adapters/storage"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadBucketOutput), args.Error(1)
}

func (m *MockObjectAPI) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CreateBucketOutput), args.Error(1)
}

func TestS3Archive_Store(t *testing.T) {
	api := new(MockObjectAPI)
	archive := storage.NewS3ArchiveWithClient(api, "exports", nil)

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "exports" &&
			*in.Key == "exports/voi/a.xlsx" &&
			*in.ContentLength == 3 &&
			string(body) == "abc"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, archive.Store(context.Background(), "exports/voi/a.xlsx", "application/octet-stream", []byte("abc")))
	api.AssertExpectations(t)
}

func TestS3Archive_StoreError(t *testing.T) {
	api := new(MockObjectAPI)
	archive := storage.NewS3ArchiveWithClient(api, "exports", nil)
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	err := archive.Store(context.Background(), "k", "text/xml", nil)
	assert.ErrorContains(t, err, "boom")
}

func TestS3Archive_EnsureBucket(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil).Once()
		require.NoError(t, storage.NewS3ArchiveWithClient(api, "exports", nil).EnsureBucket(context.Background()))
		api.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()
		api.On("CreateBucket", mock.Anything, mock.Anything).Return(&s3.CreateBucketOutput{}, nil).Once()
		require.NoError(t, storage.NewS3ArchiveWithClient(api, "exports", nil).EnsureBucket(context.Background()))
		api.AssertExpectations(t)
	})

	t.Run("other error", func(t *testing.T) {
		api := new(MockObjectAPI)
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, errors.New("denied")).Once()
		err := storage.NewS3ArchiveWithClient(api, "exports", nil).EnsureBucket(context.Background())
		assert.ErrorContains(t, err, "denied")
	})
}
