package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/trsgd/blobstore"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) call(name string, ctx context.Context, in any) (any, error) {
	args := m.MethodCalled(name, ctx, in)
	return args.Get(0), args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	out, err := m.call("GetObject", ctx, in)
	o, _ := out.(*s3.GetObjectOutput)
	return o, err
}

func (m *mockClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	out, err := m.call("PutObject", ctx, in)
	o, _ := out.(*s3.PutObjectOutput)
	return o, err
}

func (m *mockClient) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	out, err := m.call("DeleteObject", ctx, in)
	o, _ := out.(*s3.DeleteObjectOutput)
	return o, err
}

func (m *mockClient) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out, err := m.call("ListObjectsV2", ctx, in)
	o, _ := out.(*s3.ListObjectsV2Output)
	return o, err
}

func (m *mockClient) UploadPart(ctx context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	out, err := m.call("UploadPart", ctx, in)
	o, _ := out.(*s3.UploadPartOutput)
	return o, err
}

func (m *mockClient) CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	out, err := m.call("CreateMultipartUpload", ctx, in)
	o, _ := out.(*s3.CreateMultipartUploadOutput)
	return o, err
}

func (m *mockClient) CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	out, err := m.call("CompleteMultipartUpload", ctx, in)
	o, _ := out.(*s3.CompleteMultipartUploadOutput)
	return o, err
}

func (m *mockClient) AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	out, err := m.call("AbortMultipartUpload", ctx, in)
	o, _ := out.(*s3.AbortMultipartUploadOutput)
	return o, err
}

var _ Client = (*mockClient)(nil)

func TestStore_Open(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "models", "ctr")

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "ctr/missing.txt"
	})).Return(nil, &types.NoSuchKey{}).Once()
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "models" && aws.ToString(in.Key) == "ctr/model.txt"
	})).Return(&s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("n_space: 0\n")),
		ContentLength: aws.Int64(11),
	}, nil).Once()

	_, err := store.Open(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	b, err := store.Open(context.Background(), "model.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(b)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, "n_space: 0\n", string(data))
	assert.Equal(t, int64(11), b.Size())
	client.AssertExpectations(t)
}

func TestStore_Create(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "models", "ctr/")

	var uploaded string
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "ctr/model.txt"
	})).Run(func(args mock.Arguments) {
		data, err := io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
		require.NoError(t, err)
		uploaded = string(data)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	w, err := store.Create(context.Background(), "model.txt")
	require.NoError(t, err)
	_, err = io.WriteString(w, "intercept: 1e+00\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "intercept: 1e+00\n", uploaded)
	assert.ErrorIs(t, w.Close(), io.ErrClosedPipe)
	client.AssertExpectations(t)
}

func TestStore_Abort(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "models", "")

	w, err := store.Create(context.Background(), "model.txt")
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	require.NoError(t, w.Abort())
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestStore_Delete(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "models", "ctr")

	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "ctr/old.txt"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Delete(context.Background(), "old.txt"))
	client.AssertExpectations(t)
}

func TestStore_List(t *testing.T) {
	client := new(mockClient)
	store := NewStore(client, "models", "ctr/")

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil && aws.ToString(in.Prefix) == "ctr/runs/"
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("ctr/runs/b.txt")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page2"),
	}, nil).Once()
	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page2"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{{Key: aws.String("ctr/runs/a.txt")}},
	}, nil).Once()

	names, err := store.List(context.Background(), "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a.txt", "runs/b.txt"}, names)
	client.AssertExpectations(t)
}
