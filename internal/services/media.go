package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // регистрация декодеров
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/repository"
	"travelblog/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	mediaDir     = "media"
	thumbDir     = "thumbs"
	thumbMaxSide = 300
	thumbQuality = 85
)

type MediaStore interface {
	List(ctx context.Context, typePrefix string) ([]*models.Media, error)
	Get(ctx context.Context, id string) (*models.Media, error)
	Add(ctx context.Context, m *models.Media) error
	Update(ctx context.Context, id string, fn func(*models.Media) error) (*models.Media, error)
	Delete(ctx context.Context, id string) (*models.Media, error)
}

// MediaService — медиатека: файлы в FILE_UPLOAD_PATH/media, метаданные в JSON-хранилище.
type MediaService struct {
	store   MediaStore
	policy  *authz.Policy
	root    string
	maxSize int64
	now     func() time.Time
}

func NewMediaService(store MediaStore, policy *authz.Policy, uploadRoot string, maxSize int64) *MediaService {
	return &MediaService{store: store, policy: policy, root: uploadRoot, maxSize: maxSize, now: time.Now}
}

func (s *MediaService) List(ctx context.Context, typePrefix string) ([]*models.Media, error) {
	return s.store.List(ctx, strings.TrimSpace(typePrefix))
}

func (s *MediaService) Get(ctx context.Context, id string) (*models.Media, error) {
	m, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError(i18n.MsgMediaNotFound)
	}
	return m, err
}

// Upload сохраняет изображение или PDF. Для растровых изображений определяются размеры
// и создаётся JPEG-превью не больше 300px по большей стороне.
func (s *MediaService) Upload(ctx context.Context, actor authz.Actor, up *FileUpload, alt, title string) (*models.Media, error) {
	log := logger.WithCtx(ctx)

	if up == nil || up.File == nil {
		return nil, models.NewValidationError(i18n.MsgUploadMissing)
	}
	if up.Size > s.maxSize {
		return nil, models.NewValidationError(i18n.MsgMediaTooLarge, utils.HumanSize(s.maxSize))
	}
	data, err := io.ReadAll(io.LimitReader(up.File, s.maxSize+1))
	if err != nil {
		return nil, models.NewInternalError(i18n.MsgUploadFailed, err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, models.NewValidationError(i18n.MsgMediaTooLarge, utils.HumanSize(s.maxSize))
	}
	if len(data) == 0 {
		return nil, models.NewValidationError(i18n.MsgUploadMissing)
	}

	mimeType := http.DetectContentType(data)
	if semi := strings.IndexByte(mimeType, ';'); semi > 0 {
		mimeType = mimeType[:semi]
	}
	if !strings.HasPrefix(mimeType, "image/") && mimeType != "application/pdf" {
		log.Warn("Недопустимый тип файла медиатеки", zap.String("mime", mimeType))
		return nil, models.NewValidationError(i18n.MsgUploadNotImage)
	}

	id := uuid.NewString()
	ext := extensionFor(up.Filename, mimeType)
	name := id + ext
	dir := filepath.Join(s.root, mediaDir)

	m := &models.Media{
		ID:               id,
		Filename:         name,
		OriginalFilename: filepath.Base(up.Filename),
		Path:             filepath.Join(dir, name),
		URL:              path.Join("/uploads", mediaDir, name),
		Type:             mimeType,
		Size:             int64(len(data)),
		Alt:              strings.TrimSpace(alt),
		Title:            strings.TrimSpace(title),
		UploadedBy:       actor.ID,
		UploadedAt:       s.now().UTC(),
	}

	if err := writeFileAtomic(dir, name, data); err != nil {
		log.Error("Ошибка записи файла медиатеки", zap.Error(err))
		return nil, models.NewInternalError(i18n.MsgUploadFailed, err)
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		m.Width, m.Height = cfg.Width, cfg.Height
		if thumb, err := s.writeThumbnail(id, data); err != nil {
			log.Warn("Не удалось создать превью", zap.String("media_id", id), zap.Error(err))
		} else {
			m.ThumbnailURL = thumb
		}
	}

	if err := s.store.Add(ctx, m); err != nil {
		_ = os.Remove(m.Path)
		s.removeThumb(m)
		log.Error("Ошибка сохранения медиатеки", zap.Error(err))
		return nil, err
	}

	log.Info("Файл добавлен в медиатеку", zap.String("media_id", id), zap.String("mime", mimeType), zap.Int64("size", m.Size))
	return m, nil
}

func (s *MediaService) Update(ctx context.Context, actor authz.Actor, id string, req models.UpdateMediaRequest) (*models.Media, error) {
	m, err := s.store.Update(ctx, id, func(m *models.Media) error {
		if err := s.policy.Check(actor, authz.Media, authz.Update, m.UploadedBy); err != nil {
			return policyError(err)
		}
		if req.Alt != nil {
			m.Alt = strings.TrimSpace(*req.Alt)
		}
		if req.Title != nil {
			m.Title = strings.TrimSpace(*req.Title)
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError(i18n.MsgMediaNotFound)
	}
	return m, err
}

func (s *MediaService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Check(actor, authz.Media, authz.Delete, m.UploadedBy); err != nil {
		return policyError(err)
	}
	if _, err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewNotFoundError(i18n.MsgMediaNotFound)
		}
		return err
	}

	if err := os.Remove(filepath.Join(s.root, mediaDir, m.Filename)); err != nil && !os.IsNotExist(err) {
		logger.WithCtx(ctx).Warn("Не удалось удалить файл медиатеки", zap.String("media_id", id), zap.Error(err))
	}
	s.removeThumb(m)
	logger.WithCtx(ctx).Info("Файл удалён из медиатеки", zap.String("media_id", id))
	return nil
}

func (s *MediaService) removeThumb(m *models.Media) {
	if m.ThumbnailURL == "" {
		return
	}
	_ = os.Remove(filepath.Join(s.root, mediaDir, thumbDir, path.Base(m.ThumbnailURL)))
}

func (s *MediaService) writeThumbnail(id string, data []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	out, err := encodeJPEG(resizeToFit(src, thumbMaxSide, thumbMaxSide), thumbQuality)
	if err != nil {
		return "", err
	}
	name := id + ".jpg"
	if err := writeFileAtomic(filepath.Join(s.root, mediaDir, thumbDir), name, out); err != nil {
		return "", err
	}
	return path.Join("/uploads", mediaDir, thumbDir, name), nil
}

// resizeToFit вписывает изображение в maxW×maxH с сохранением пропорций; прозрачность заливается белым.
func resizeToFit(src image.Image, maxW, maxH int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	newW, newH := w, h
	if w > maxW || h > maxH {
		scale := float64(maxW) / float64(w)
		if sh := float64(maxH) / float64(h); sh < scale {
			scale = sh
		}
		newW, newH = max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}
