package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/trsgd/blobstore"
	miniostore "github.com/hupe1980/trsgd/blobstore/minio"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want location
	}{
		{"model.txt", location{key: "model.txt"}},
		{"/var/lib/trsgd/model.txt.zst", location{key: "/var/lib/trsgd/model.txt.zst"}},
		{"s3://models/ctr/model.txt", location{scheme: "s3", bucket: "models", key: "ctr/model.txt"}},
		{"minio://models/model.txt.lz4", location{scheme: "minio", bucket: "models", key: "model.txt.lz4"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLocation(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseLocation_Errors(t *testing.T) {
	for _, in := range []string{"", "gs://bucket/key", "s3://bucket", "s3://bucket/", "minio:///key"} {
		_, err := parseLocation(in)
		assert.Error(t, err, in)
	}
}

func TestOpenStore_Local(t *testing.T) {
	dir := t.TempDir()
	loc, err := parseLocation(filepath.Join(dir, "model.txt"))
	require.NoError(t, err)

	store, name, err := openStore(context.Background(), DefaultConfig(), loc)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)
	assert.Equal(t, "model.txt", name)
}

func TestOpenStore_MinIO(t *testing.T) {
	loc, err := parseLocation("minio://models/model.txt")
	require.NoError(t, err)

	_, _, err = openStore(context.Background(), DefaultConfig(), loc)
	assert.Error(t, err, "endpoint is required")

	cfg := DefaultConfig()
	cfg.MinIO = MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}
	store, name, err := openStore(context.Background(), cfg, loc)
	require.NoError(t, err)
	assert.IsType(t, &miniostore.Store{}, store)
	assert.Equal(t, "model.txt", name)
}
