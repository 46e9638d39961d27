package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores blobs on the filesystem under Root and serves them from
// URLPrefix.
type Local struct {
	Root      string
	URLPrefix string
}

// NewLocal creates root if needed.
func NewLocal(root, urlPrefix string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("blobstore: local path is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create %s: %w", root, err)
	}
	return &Local{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Put writes to a uniquely named temp file beside the target and renames it
// into place, so readers never see a partial file.
func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := filepath.Join(l.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("blobstore: mkdir: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("blobstore: create temp: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("blobstore: write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("blobstore: close: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("blobstore: rename: %w", err)
	}
	return nil
}

// URL joins the prefix and the escaped key.
func (l *Local) URL(key string) string {
	return l.URLPrefix + "/" + escapeKey(key)
}
