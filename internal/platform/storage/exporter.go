package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/oklog/ulid/v2"
)

const defaultArtifactURLTTL = 15 * time.Minute

var (
	errNilClient     = errors.New("storage: client is required")
	errEmptyBucket   = errors.New("storage: bucket name is required")
	errEmptyPayload  = errors.New("storage: artifact payload is empty")
	errInvalidPrefix = errors.New("storage: artifact prefix is required")
)

// ArtifactRef identifies an uploaded artifact and its time-limited download URL.
type ArtifactRef struct {
	Bucket    string
	Object    string
	URL       string
	ExpiresAt time.Time
}

// ArtifactWriter uploads generated artifacts (CSV exports, print manifests) to the
// exports bucket and returns signed download URLs.
type ArtifactWriter struct {
	client *gcs.Client
	bucket string
	signer Signer
	urlTTL time.Duration
	now    func() time.Time
}

// ArtifactWriterOption customises ArtifactWriter behaviour.
type ArtifactWriterOption func(*ArtifactWriter)

// WithArtifactURLTTL overrides the signed URL lifetime.
func WithArtifactURLTTL(ttl time.Duration) ArtifactWriterOption {
	return func(w *ArtifactWriter) {
		if ttl > 0 {
			w.urlTTL = ttl
		}
	}
}

// WithArtifactClock injects a custom clock (useful for tests).
func WithArtifactClock(clock func() time.Time) ArtifactWriterOption {
	return func(w *ArtifactWriter) {
		if clock != nil {
			w.now = clock
		}
	}
}

// NewArtifactWriter constructs an ArtifactWriter bound to the exports bucket.
func NewArtifactWriter(client *gcs.Client, bucket string, signer Signer, opts ...ArtifactWriterOption) (*ArtifactWriter, error) {
	if client == nil {
		return nil, errNilClient
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errEmptyBucket
	}

	w := &ArtifactWriter{
		client: client,
		bucket: bucket,
		signer: signer,
		urlTTL: defaultArtifactURLTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Write uploads the payload under a fresh object name below prefix and returns
// a reference with a signed download URL. When no signer is configured the URL
// falls back to the unauthenticated media link.
func (w *ArtifactWriter) Write(ctx context.Context, prefix, extension, contentType string, payload []byte) (ArtifactRef, error) {
	if w == nil || w.client == nil {
		return ArtifactRef{}, errNilClient
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ArtifactRef{}, errInvalidPrefix
	}
	if len(payload) == 0 {
		return ArtifactRef{}, errEmptyPayload
	}

	object := path.Join(prefix, w.newObjectName(extension))

	writer := w.client.Bucket(w.bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if _, err := writer.Write(payload); err != nil {
		_ = writer.Close()
		return ArtifactRef{}, fmt.Errorf("storage: write artifact %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return ArtifactRef{}, fmt.Errorf("storage: finalise artifact %s: %w", object, err)
	}

	ref := ArtifactRef{Bucket: w.bucket, Object: object}

	if w.signer == nil || strings.TrimSpace(w.signer.Email()) == "" {
		ref.URL = fmt.Sprintf("https://storage.googleapis.com/%s/%s", w.bucket, object)
		return ref, nil
	}

	expires := w.now().Add(w.urlTTL)
	url, err := gcs.SignedURL(w.bucket, object, &gcs.SignedURLOptions{
		GoogleAccessID: w.signer.Email(),
		Method:         "GET",
		Expires:        expires,
		Scheme:         gcs.SigningSchemeV4,
		SignBytes: func(b []byte) ([]byte, error) {
			return w.signer.SignBytes(ctx, b)
		},
	})
	if err != nil {
		return ArtifactRef{}, fmt.Errorf("storage: sign artifact url %s: %w", object, err)
	}

	ref.URL = url
	ref.ExpiresAt = expires
	return ref, nil
}

func (w *ArtifactWriter) newObjectName(extension string) string {
	id := ulid.MustNew(ulid.Timestamp(w.now()), ulid.DefaultEntropy())
	name := strings.ToLower(id.String())
	extension = strings.TrimPrefix(strings.TrimSpace(extension), ".")
	if extension == "" {
		return name
	}
	return name + "." + extension
}
