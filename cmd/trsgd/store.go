package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/trsgd/blobstore"
	miniostore "github.com/hupe1980/trsgd/blobstore/minio"
	s3store "github.com/hupe1980/trsgd/blobstore/s3"
)

const (
	schemeLocal = ""
	schemeS3    = "s3"
	schemeMinIO = "minio"
)

// location is a parsed model location.
type location struct {
	scheme string
	bucket string // empty for local paths
	key    string
}

func (l location) String() string {
	if l.scheme == schemeLocal {
		return l.key
	}
	return l.scheme + "://" + l.bucket + "/" + l.key
}

func parseLocation(s string) (location, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		if s == "" {
			return location{}, errors.New("empty model location")
		}
		return location{scheme: schemeLocal, key: s}, nil
	}
	switch scheme {
	case schemeS3, schemeMinIO:
	default:
		return location{}, fmt.Errorf("model location %q: unsupported scheme %q", s, scheme)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	key = strings.Trim(key, "/")
	if bucket == "" || key == "" {
		return location{}, fmt.Errorf("model location %q: want %s://bucket/key", s, scheme)
	}
	return location{scheme: scheme, bucket: bucket, key: key}, nil
}

// openStore returns the store holding loc and the blob name inside it.
func openStore(ctx context.Context, cfg Config, loc location) (blobstore.BlobStore, string, error) {
	switch loc.scheme {
	case schemeS3:
		var opts []func(*config.LoadOptions) error
		if cfg.S3.Region != "" {
			opts = append(opts, config.WithRegion(cfg.S3.Region))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("aws config: %w", err)
		}
		return s3store.NewStore(s3.NewFromConfig(awsCfg), loc.bucket, ""), loc.key, nil
	case schemeMinIO:
		if cfg.MinIO.Endpoint == "" {
			return nil, "", fmt.Errorf("%s requires a MinIO endpoint", loc)
		}
		client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.Secure,
		})
		if err != nil {
			return nil, "", fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, loc.bucket, ""), loc.key, nil
	default:
		return blobstore.NewLocalStore(filepath.Dir(loc.key)), filepath.Base(loc.key), nil
	}
}
