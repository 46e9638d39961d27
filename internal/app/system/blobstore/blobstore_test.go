package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	tests := []struct {
		subject, section, tag, filename string
		want                            string
	}{
		{"Physics", "notes", "", "week1.pdf", "uploads/Physics/notes/1700000000123_week1.pdf"},
		{"Physics", "notes", "3f2a9c1d", "week1.pdf", "uploads/Physics/notes/1700000000123_3f2a9c1d_week1.pdf"},
		{"Electrical Engineering", "lab", "", "Lab 2 (final).docx", "uploads/Electrical Engineering/lab/1700000000123_Lab_2__final_.docx"},
		{"Physics", "notes", "", "../../etc/passwd", "uploads/Physics/notes/1700000000123_passwd"},
		{"Physics", "notes", "../x", "a.pdf", "uploads/Physics/notes/1700000000123_x_a.pdf"},
		{"a/b", "notes", "", "", "uploads/a_b/notes/1700000000123_file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectKey(tt.subject, tt.section, at, tt.tag, tt.filename))
	}
}

func TestObjectKey_TagSeparatesCollidingNames(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	// "lab 1.pdf" and "lab_1.pdf" sanitize to the same name.
	assert.Equal(t, ObjectKey("Physics", "notes", at, "", "lab 1.pdf"), ObjectKey("Physics", "notes", at, "", "lab_1.pdf"))
	assert.NotEqual(t, ObjectKey("Physics", "notes", at, "a1", "lab 1.pdf"), ObjectKey("Physics", "notes", at, "b2", "lab_1.pdf"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"notes.pdf":            "notes.pdf",
		"my notes.pdf":         "my_notes.pdf",
		`C:\Users\me\file.txt`: "file.txt",
		"..":                   "file",
		"ünï.txt":              "__n__.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), "sanitizeFilename(%q)", in)
	}

	long := strings.Repeat("a", 150) + ".pdf"
	got := sanitizeFilename(long)
	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestValidateKey(t *testing.T) {
	for _, bad := range []string{"", "/abs", "a/../b", "a//b", "a\\b", "./a"} {
		assert.ErrorIs(t, validateKey(bad), ErrInvalidKey, "key %q", bad)
	}
	assert.NoError(t, validateKey("uploads/Physics/notes/1_a.pdf"))
}

func TestLocal_PutAndURL(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "/files/")
	require.NoError(t, err)

	key := "uploads/Computer Programming/notes/1_a.txt"
	require.NoError(t, l.Put(context.Background(), key, strings.NewReader("hello"), "text/plain"))

	data, err := os.ReadFile(filepath.Join(root, "uploads", "Computer Programming", "notes", "1_a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.Equal(t, "/files/uploads/Computer%20Programming/notes/1_a.txt", l.URL(key))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(root, "uploads", "Computer Programming", "notes"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLocal_PutFailureLeavesNothing(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "/files")
	require.NoError(t, err)

	err = l.Put(context.Background(), "uploads/x/notes/1_a.txt", failingReader{}, "")
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "uploads", "x", "notes"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocal_RejectsEscapingKey(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/files")
	require.NoError(t, err)
	assert.ErrorIs(t, l.Put(context.Background(), "../x", strings.NewReader(""), ""), ErrInvalidKey)
}

type fakeS3 struct {
	got  *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.got = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3_Put(t *testing.T) {
	fake := &fakeS3{}
	s := newS3WithClient(fake, Config{S3Bucket: "bucket", S3Region: "us-east-1", S3Prefix: "/site/"})

	require.NoError(t, s.Put(context.Background(), "uploads/Physics/lab/1_a.pdf", strings.NewReader("pdf"), "application/pdf"))
	assert.Equal(t, "bucket", aws.ToString(fake.got.Bucket))
	assert.Equal(t, "site/uploads/Physics/lab/1_a.pdf", aws.ToString(fake.got.Key))
	assert.Equal(t, "application/pdf", aws.ToString(fake.got.ContentType))
	assert.Equal(t, "pdf", fake.body)
}

func TestS3_PutError(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	s := newS3WithClient(fake, Config{S3Bucket: "bucket"})
	assert.Error(t, s.Put(context.Background(), "k", strings.NewReader(""), ""))
}

func TestS3_URL(t *testing.T) {
	awsStore := newS3WithClient(&fakeS3{}, Config{S3Bucket: "b", S3Region: "eu-west-1"})
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/uploads/HISP-1/notes/1_a.pdf", awsStore.URL("uploads/HISP-1/notes/1_a.pdf"))

	minio := newS3WithClient(&fakeS3{}, Config{S3Bucket: "b", S3Endpoint: "http://localhost:9000/"})
	assert.Equal(t, "http://localhost:9000/b/a%20b.txt", minio.URL("a b.txt"))

	cdn := newS3WithClient(&fakeS3{}, Config{S3Bucket: "b", S3PublicURL: "https://cdn.example.com/", S3Prefix: "p"})
	assert.Equal(t, "https://cdn.example.com/p/k", cdn.URL("k"))
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "ftp"})
	assert.Error(t, err)
}
