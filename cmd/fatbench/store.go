package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/fatio/blobstore"
	miniostore "github.com/hupe1980/fatio/blobstore/minio"
	s3store "github.com/hupe1980/fatio/blobstore/s3"
)

// openStore resolves a snapshot destination:
//
//	s3://bucket/prefix              AWS default credential chain
//	minio://endpoint/bucket/prefix  MINIO_ROOT_USER / MINIO_ROOT_PASSWORD; ?secure=false for plain HTTP
//	anything else                   local directory
func openStore(ctx context.Context, dest string) (blobstore.Store, error) {
	if !strings.Contains(dest, "://") {
		return blobstore.NewLocalStore(dest), nil
	}
	u, err := url.Parse(dest)
	if err != nil {
		return nil, fmt.Errorf("snapshot destination: %w", err)
	}

	switch u.Scheme {
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("snapshot destination %q: missing bucket", dest)
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return s3store.NewStore(awss3.NewFromConfig(cfg), u.Host, strings.Trim(u.Path, "/")), nil
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return nil, fmt.Errorf("snapshot destination %q: want minio://endpoint/bucket[/prefix]", dest)
		}
		secure := true
		if v := u.Query().Get("secure"); v != "" {
			if secure, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("snapshot destination %q: secure: %w", dest, err)
			}
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: secure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, bucket, prefix), nil
	default:
		return nil, fmt.Errorf("snapshot destination %q: unsupported scheme %q", dest, u.Scheme)
	}
}
