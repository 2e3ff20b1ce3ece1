package minio

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/trsgd/blobstore"
)

// TestStore_Integration needs a MinIO server; set MINIO_ENDPOINT to run it.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "trsgd-test"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, fmt.Sprintf("run-%d", time.Now().UnixNano()))

	_, err = store.Open(ctx, "model.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	w, err := store.Create(ctx, "model.txt")
	require.NoError(t, err)
	_, err = io.WriteString(w, "n_space: 0\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err := store.Open(ctx, "model.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(b)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, "n_space: 0\n", string(data))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"model.txt"}, names)

	require.NoError(t, store.Delete(ctx, "model.txt"))
	_, err = store.Open(ctx, "model.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
