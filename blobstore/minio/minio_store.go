// Package minio stores volume images in MinIO or any other S3-compatible
// endpoint reachable through minio-go.
package minio

import (
	"bytes"
	"context"
	"io"
	"slices"

	"github.com/hupe1980/fatio/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store is a blobstore.Store over one bucket.
type Store struct {
	client *minio.Client
	bucket string
	ns     blobstore.Namespace
}

// NewStore returns a Store that keeps images under rootPrefix in bucket.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, ns: blobstore.Namespace(rootPrefix)}
}

func missing(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Open stats the object and returns a reader that issues ranged GETs.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.ns.Key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil:
	case missing(err):
		return nil, blobstore.ErrNotFound
	default:
		return nil, err
	}
	return &object{store: s, key: key, size: info.Size}, nil
}

// Put uploads the image in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	opts := minio.PutObjectOptions{ContentType: "application/octet-stream"}
	_, err := s.client.PutObject(ctx, s.bucket, s.ns.Key(name), bytes.NewReader(data), int64(len(data)), opts)
	return err
}

// Delete removes the image. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.ns.Key(name), minio.RemoveObjectOptions{}); err != nil && !missing(err) {
		return err
	}
	return nil
}

// List walks the bucket recursively below the root prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	opts := minio.ListObjectsOptions{Prefix: s.ns.ListPrefix(prefix), Recursive: true}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if n := s.ns.Name(obj.Key); n != "" {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

type object struct {
	store *Store
	key   string
	size  int64
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	end, err := blobstore.Span(off, len(p), o.size)
	if err != nil {
		return 0, err
	}

	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, end); err != nil {
		return 0, err
	}
	r, err := o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	n, err := io.ReadFull(r, p[:end-off+1])
	return blobstore.Finish(n, len(p), err)
}
