package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Storage(t *testing.T) {
	cfg := S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:4566/",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}

	storage, err := NewS3Storage(t.TempDir(), cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Bucket, storage.bucket)
	assert.Equal(t, cfg.Region, storage.region)
	assert.Equal(t, "http://localhost:4566", storage.endpoint)
}

func TestS3Storage_InheritsLocalStorage(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewS3Storage(dir, S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	})
	require.NoError(t, err)

	path, err := storage.ResolveOutput("out.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.mp4"), path)
}

func TestS3Storage_Publish_MockServer(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT method, got %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		gotPath = r.URL.Path
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	storage, err := NewS3Storage(dir, S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	})
	require.NoError(t, err)

	output := filepath.Join(dir, "scaled.mp4")
	require.NoError(t, os.WriteFile(output, []byte("test content"), 0600))

	url, err := Publish(context.Background(), storage, output)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/test-bucket/outputs/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ".mp4"), gotPath)
	assert.Contains(t, gotBody, "test content")
	assert.Equal(t, server.URL+gotPath, url)
}

func TestS3Storage_UploadToS3_VirtualHostURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	storage, err := NewS3Storage(t.TempDir(), S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	})
	require.NoError(t, err)
	// Drop the endpoint after construction to exercise the AWS URL form.
	storage.endpoint = ""

	url, err := storage.UploadToS3(context.Background(), "test-key", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://test-bucket.s3.us-east-1.amazonaws.com/test-key", url)
}
