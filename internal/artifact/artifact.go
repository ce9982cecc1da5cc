// Package artifact stores encoded image blobs and hands back references
// usable for later retrieval.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store accepts encoded image blobs and returns retrievable references.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// Disk is a local-filesystem artifact store. References are uuid-derived
// file names relative to the store directory.
type Disk struct {
	dir string
}

// NewDisk creates a disk store rooted at dir, creating it if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// Put writes the blob and returns its reference.
func (d *Disk) Put(ctx context.Context, data []byte) (string, error) {
	ref := uuid.NewString() + ".jpg"
	path := filepath.Join(d.dir, ref)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return ref, nil
}

// Get reads the blob for a reference. The reference is restricted to a bare
// file name so callers cannot escape the store directory.
func (d *Disk) Get(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return nil, fmt.Errorf("invalid artifact reference %q", ref)
	}
	data, err := os.ReadFile(filepath.Join(d.dir, ref))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}
