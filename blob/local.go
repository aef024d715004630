/*
Package blob stores justificatifs (receipts, invoices, loan contracts).

PURPOSE:
  Implements campaign.BlobStore twice: a local filesystem store for
  development and single-host deployments, and a Google Cloud Storage
  store for production. Both yield the same stable path reference the
  operation record carries; the reference never encodes which backend
  produced it beyond the bucket layout.

PATH LAYOUT:
  justificatifs/<uuid>-<sanitized original name>

  The uuid prefix keeps two uploads of "facture.pdf" distinct; the
  original name is kept in the path for operator-side debugging and
  returned separately as the display name.

SEE ALSO:
  - campaign/store.go: The BlobStore interface
  - gcs.go: Cloud storage implementation
*/
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/quitus/campaign-ledger/compliance"
)

const prefix = "justificatifs"

// Local stores justificatifs under a root directory on disk.
type Local struct {
	root string
}

// NewLocal creates the store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(filepath.Join(dir, prefix), 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Local{root: dir}, nil
}

func (l *Local) Put(_ context.Context, name string, r io.Reader) (compliance.Attachment, error) {
	objectPath := objectName(name)

	f, err := os.Create(filepath.Join(l.root, filepath.FromSlash(objectPath)))
	if err != nil {
		return compliance.Attachment{}, fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return compliance.Attachment{}, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return compliance.Attachment{}, fmt.Errorf("close blob: %w", err)
	}

	return compliance.Attachment{Path: objectPath, FileName: name}, nil
}

func (l *Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if strings.Contains(clean, "..") {
		return nil, fmt.Errorf("invalid blob path %q", path)
	}
	f, err := os.Open(filepath.Join(l.root, clean))
	if err != nil {
		return nil, fmt.Errorf("open blob %q: %w", path, err)
	}
	return f, nil
}

// objectName builds the stored path for an uploaded file name.
func objectName(name string) string {
	return prefix + "/" + uuid.NewString() + "-" + sanitize(name)
}

// sanitize strips directory components and characters that would break a
// path segment. Display names keep the original; only the stored path is
// sanitized.
func sanitize(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "fichier"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "fichier"
	}
	return b.String()
}
