package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/infrastructure/storage"
	"pet-adoption-marketplace/internal/logger"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// FieldName is the multipart field photos arrive in.
const FieldName = "photos"

const (
	msgUnsupportedType = "Only JPEG/PNG/WebP images are allowed"
	nameEntropyBytes   = 10
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Photos validates and stores uploaded listing photos.
type Photos struct {
	store    storage.Storage
	maxSize  int64
	maxFiles int
	now      func() time.Time
}

func NewPhotos(store storage.Storage, cfg config.UploadConfig) *Photos {
	return &Photos{
		store:    store,
		maxSize:  cfg.MaxFileSize,
		maxFiles: cfg.MaxFiles,
		now:      time.Now,
	}
}

// MaxFiles is the per-request file cap.
func (p *Photos) MaxFiles() int {
	return p.maxFiles
}

// Save checks every file before writing any, then stores them in order and
// returns their public paths. Nothing is left on disk when an error is
// returned.
func (p *Photos) Save(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if p.maxFiles > 0 && len(files) > p.maxFiles {
		return nil, appErrors.Validation(fmt.Sprintf("At most %d photos per request", p.maxFiles),
			appErrors.FieldError{Field: FieldName, Message: "too many files"})
	}

	exts := make([]string, len(files))
	for i, fh := range files {
		if p.maxSize > 0 && fh.Size > p.maxSize {
			return nil, appErrors.Validation(fmt.Sprintf("Each photo must be at most %d bytes", p.maxSize),
				appErrors.FieldError{Field: FieldName, Message: fmt.Sprintf("%s is too large", fh.Filename)})
		}
		ext, err := detect(fh)
		if err != nil {
			return nil, err
		}
		exts[i] = ext
	}

	saved := make([]string, 0, len(files))
	for i, fh := range files {
		name, err := p.write(ctx, fh, exts[i])
		if err != nil {
			p.Discard(ctx, saved)
			return nil, err
		}
		saved = append(saved, p.store.URL(name))
	}

	logger.Debug("Photos stored", zap.Int("count", len(saved)))
	return saved, nil
}

// Discard removes previously saved photos, e.g. when the request that
// carried them failed validation.
func (p *Photos) Discard(ctx context.Context, urls []string) {
	for _, u := range urls {
		name := u[strings.LastIndex(u, "/")+1:]
		if err := p.store.Delete(ctx, name); err != nil {
			logger.Warn("Failed to discard photo", zap.String("path", u), zap.Error(err))
		}
	}
}

func (p *Photos) write(ctx context.Context, fh *multipart.FileHeader, ext string) (string, error) {
	suffix, err := utils.GenerateSecureToken(nameEntropyBytes)
	if err != nil {
		return "", fmt.Errorf("failed to name upload: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", p.now().UnixMilli(), suffix, ext)

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	if err := p.store.Save(ctx, name, f); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return name, nil
}

// detect sniffs the content; the client-declared type is ignored.
func detect(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(io.LimitReader(f, 3072))
	if err != nil {
		return "", fmt.Errorf("failed to detect upload type: %w", err)
	}

	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedTypes[m.String()]; ok {
			return ext, nil
		}
	}
	return "", appErrors.Validation(msgUnsupportedType,
		appErrors.FieldError{Field: FieldName, Message: msgUnsupportedType})
}
