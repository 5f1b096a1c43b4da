package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_archiveClient_Upload(t *testing.T) {
	var mu sync.Mutex
	var gotMethod, gotPath, gotContentType, gotAcl string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotMethod = req.Method
		gotPath = req.URL.Path
		gotContentType = req.Header.Get("content-type")
		gotAcl = req.Header.Get("x-amz-acl")
		gotBody, _ = io.ReadAll(req.Body)
		res.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := newArchiveClient(Config{
		AccessKeyId: "key",
		SecretKey:   "secret",
		RegionName:  "nyc3",
		BucketName:  "fitplate-body-images",
	}, srv.URL, "https://fitplate-body-images.example.test", true)
	require.NoError(t, err)

	url, err := c.Upload(context.Background(), "body-images/a-1/x.jpg", "image/jpeg", bytes.NewReader([]byte("jpeg-bytes")))
	assert.NoError(t, err)
	assert.Equal(t, "https://fitplate-body-images.example.test/body-images/a-1/x.jpg", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/fitplate-body-images/body-images/a-1/x.jpg", gotPath)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "private", gotAcl)
	assert.Equal(t, "jpeg-bytes", string(gotBody))
}

func Test_archiveClient_Upload_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.WriteHeader(http.StatusForbidden)
		res.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer srv.Close()

	c, err := newArchiveClient(Config{RegionName: "nyc3", BucketName: "b"}, srv.URL, "https://b.example.test", true)
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "k", "image/png", bytes.NewReader([]byte("png")))
	assert.Error(t, err)
}

func Test_FormatBodyImageKey(t *testing.T) {
	tests := []struct {
		assessmentId string
		contentType  string
		wantPrefix   string
		wantSuffix   string
	}{
		{"a-1", "image/jpeg", "body-images/a-1/", ".jpg"},
		{"a-2", "image/png", "body-images/a-2/", ".png"},
		{"../etc", "image/webp", "body-images/___etc/", ".webp"},
	}
	for _, tt := range tests {
		t.Run(tt.assessmentId, func(t *testing.T) {
			key := FormatBodyImageKey(tt.assessmentId, tt.contentType)
			assert.True(t, strings.HasPrefix(key, tt.wantPrefix), key)
			assert.True(t, strings.HasSuffix(key, tt.wantSuffix), key)
		})
	}
}

func Test_Config_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{EndpointOrigin: "nyc3.digitaloceanspaces.com", BucketName: "b"}.Enabled())
}
