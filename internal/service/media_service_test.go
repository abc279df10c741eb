package service

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	svc := NewMediaService(&config.Config{UploadDir: dir, MaxUploadBytes: 1024})

	url, err := svc.SaveUpload(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveUploadRejects(t *testing.T) {
	svc := NewMediaService(&config.Config{UploadDir: t.TempDir(), MaxUploadBytes: 64})

	_, err := svc.SaveUpload(strings.NewReader("just some text pretending to be an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 100)...)
	_, err = svc.SaveUpload(bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestWriteFileRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	src := io.MultiReader(bytes.NewReader(pngHeader), iotest.ErrReader(errors.New("disk unplugged")))

	err := writeFile(path, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write file")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "partial upload must not be left behind")

	require.NoError(t, writeFile(path, bytes.NewReader(pngHeader)))
	_, statErr = os.Stat(path)
	assert.NoError(t, statErr)
}
