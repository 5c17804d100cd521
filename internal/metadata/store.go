package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ferrocene/releasetools/internal/toolerr"
)

// ObjectName is the name of the metadata document below the commit
// directory.
const ObjectName = "ferrocene-ci-metadata.json"

//go:generate mockgen -package mocks -destination mocks/store.go . Store

// Store provides the raw metadata document of a commit.
type Store interface {
	Get(ctx context.Context, commit string) ([]byte, error)
}

func objectKey(prefix, commit string) string {
	return path.Join(prefix, commit, ObjectName)
}

// GCSStore reads metadata documents from a Google Cloud Storage bucket.
// Documents are stored as <prefix>/<commit>/ferrocene-ci-metadata.json.
type GCSStore struct {
	clt    *storage.Client
	bucket string
	prefix string
}

type GCSOption func(*gcsOptions)

type gcsOptions struct {
	clientOpts []option.ClientOption
}

// WithEndpoint overrides the storage API endpoint.
func WithEndpoint(endpoint string) GCSOption {
	return func(o *gcsOptions) {
		o.clientOpts = append(o.clientOpts, option.WithEndpoint(endpoint))
	}
}

// WithoutAuthentication configures the client to send unauthenticated
// requests, this works for public buckets.
func WithoutAuthentication() GCSOption {
	return func(o *gcsOptions) {
		o.clientOpts = append(o.clientOpts, option.WithoutAuthentication())
	}
}

func NewGCSStore(ctx context.Context, bucket, prefix string, opts ...GCSOption) (*GCSStore, error) {
	var o gcsOptions
	for _, opt := range opts {
		opt(&o)
	}

	clt, err := storage.NewClient(ctx, o.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client failed: %w", err)
	}

	return &GCSStore{
		clt:    clt,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Get downloads the metadata document of commit.
func (s *GCSStore) Get(ctx context.Context, commit string) ([]byte, error) {
	key := objectKey(s.prefix, commit)
	op := fmt.Sprintf("reading gs://%s/%s", s.bucket, key)

	rd, err := s.clt.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, toolerr.NewRemoteRequestFailedError("gcs", op, http.StatusNotFound, err)
		}

		return nil, toolerr.NewRemoteRequestFailedError("gcs", op, 0, err)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, toolerr.NewRemoteRequestFailedError("gcs", op, 0, err)
	}

	return data, nil
}

func (s *GCSStore) Close() error {
	return s.clt.Close()
}

// DirStore reads metadata documents from a local directory that has the same
// layout as the bucket.
type DirStore struct {
	dir    string
	prefix string
}

func NewDirStore(dir, prefix string) *DirStore {
	return &DirStore{dir: dir, prefix: prefix}
}

func (s *DirStore) Get(_ context.Context, commit string) ([]byte, error) {
	p := filepath.Join(s.dir, filepath.FromSlash(objectKey(s.prefix, commit)))

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading metadata of commit %s failed: %w", commit, err)
	}

	return data, nil
}
