// Package blobstore stores uploaded files and hands back their public URLs.
//
// Two backends exist: Local writes under a directory that the router serves
// as static files, S3 writes to a bucket (AWS or any S3-compatible endpoint
// such as MinIO).
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Store is a write-once blob sink.
type Store interface {
	// Put writes r under key. Keys are slash-separated and relative.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// URL is the public address of key.
	URL(key string) string
}

// ErrInvalidKey is returned for empty, absolute or parent-escaping keys.
var ErrInvalidKey = errors.New("blobstore: invalid key")

// Config selects and configures a backend.
type Config struct {
	Type string // "local" or "s3"

	LocalPath string
	LocalURL  string

	S3Region    string
	S3Bucket    string
	S3Prefix    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// New builds the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "local":
		return NewLocal(cfg.LocalPath, cfg.LocalURL)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("blobstore: unknown storage type %q", cfg.Type)
	}
}

// ObjectKey is the storage key for an uploaded section file:
// uploads/{subject}/{section}/{unixMillis}_{tag}_{filename}. Files in one
// batch usually share the millisecond and distinct names can sanitize to
// the same string, so tag must differ per file. An empty tag is omitted.
func ObjectKey(subject, section string, at time.Time, tag, filename string) string {
	name := sanitizeFilename(filename)
	if tag = cleanTag(tag); tag != "" {
		name = tag + "_" + name
	}
	return path.Join("uploads", cleanSegment(subject), cleanSegment(section),
		fmt.Sprintf("%d_%s", at.UnixMilli(), name))
}

// cleanTag keeps only filename-safe bytes of tag.
func cleanTag(tag string) string {
	out := make([]byte, 0, len(tag))
	for i := 0; i < len(tag); i++ {
		if c := tag[i]; isAllowedFilenameChar(c) && c != '.' {
			out = append(out, c)
		}
	}
	return string(out)
}

// validateKey rejects keys that would escape the store root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// escapeKey percent-encodes each key segment for use in a URL path.
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// cleanSegment keeps a subject or section name readable but makes it safe
// as a single path segment.
func cleanSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// sanitizeFilename removes or replaces characters that could be problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || strings.Trim(string(result), ".") == "" {
		return "file"
	}
	if len(result) > 100 {
		// Truncate but preserve extension if present
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
