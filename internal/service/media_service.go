package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types, detected from content.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaService handles file upload operations.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// SaveUpload stores an image under a UUID filename and returns its public
// URL path. The declared content type is ignored; the bytes decide.
func (s *MediaService) SaveUpload(file io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedMIMETypes[mtype.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, mtype.String())
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	if err := writeFile(filepath.Join(s.cfg.UploadDir, filename), bytes.NewReader(data)); err != nil {
		return "", err
	}
	return "/uploads/" + filename, nil
}

// writeFile copies src to path. On any failure the partial file is removed.
func writeFile(path string, src io.Reader) (err error) {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
