package blob

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/quitus/campaign-ledger/compliance"
)

// GCS stores justificatifs in a Google Cloud Storage bucket. It assumes
// Application Default Credentials are configured.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates the store against the given bucket.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) Put(ctx context.Context, name string, r io.Reader) (compliance.Attachment, error) {
	objectPath := objectName(name)

	w := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return compliance.Attachment{}, fmt.Errorf("copy to GCS writer: %w", err)
	}
	// Close commits the object; the upload is not durable until it returns.
	if err := w.Close(); err != nil {
		return compliance.Attachment{}, fmt.Errorf("close GCS writer: %w", err)
	}

	return compliance.Attachment{Path: objectPath, FileName: name}, nil
}

func (g *GCS) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(g.bucket).Object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	return r, nil
}
