package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/infrastructure/storage"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
	textBytes = []byte("just some text, definitely not an image")
)

type part struct {
	name string
	data []byte
}

func fileHeaders(t *testing.T, parts ...part) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := w.CreateFormFile(FieldName, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[FieldName]
}

func newPhotos(t *testing.T, maxSize int64, maxFiles int) (*Photos, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)
	return NewPhotos(store, config.UploadConfig{MaxFileSize: maxSize, MaxFiles: maxFiles}), dir
}

func TestSave_StoresImagesInOrder(t *testing.T) {
	photos, dir := newPhotos(t, 1<<20, 5)

	urls, err := photos.Save(context.Background(), fileHeaders(t,
		part{"a.png", pngBytes},
		part{"b.jpeg", jpegBytes},
	))
	require.NoError(t, err)
	require.Len(t, urls, 2)

	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d+-[0-9a-f]{20}\.png$`), urls[0])
	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d+-[0-9a-f]{20}\.jpg$`), urls[1])

	for _, u := range urls {
		_, err := os.Stat(filepath.Join(dir, filepath.Base(u)))
		assert.NoError(t, err)
	}
}

func TestSave_RejectsNonImages(t *testing.T) {
	photos, dir := newPhotos(t, 1<<20, 5)

	_, err := photos.Save(context.Background(), fileHeaders(t,
		part{"a.png", pngBytes},
		part{"fake.png", textBytes},
	))
	require.Error(t, err)

	appErr, ok := appErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, appErrors.CodeValidation, appErr.Code)
	assert.Equal(t, "Only JPEG/PNG/WebP images are allowed", appErr.Message)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_Limits(t *testing.T) {
	photos, _ := newPhotos(t, 32, 1)

	_, err := photos.Save(context.Background(), fileHeaders(t, part{"a.png", pngBytes}))
	assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation), "oversized file")

	photos, _ = newPhotos(t, 1<<20, 1)
	_, err = photos.Save(context.Background(), fileHeaders(t,
		part{"a.png", pngBytes},
		part{"b.png", pngBytes},
	))
	assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation), "too many files")
}

func TestDiscard(t *testing.T) {
	photos, dir := newPhotos(t, 1<<20, 5)

	urls, err := photos.Save(context.Background(), fileHeaders(t, part{"a.png", pngBytes}))
	require.NoError(t, err)

	photos.Discard(context.Background(), urls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_NoFiles(t *testing.T) {
	photos, _ := newPhotos(t, 1<<20, 5)

	urls, err := photos.Save(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, urls)
}
