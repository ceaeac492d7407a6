package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/observability"
	"travelblog/internal/utils"

	"go.uber.org/zap"
)

// FileUpload — файл из multipart-формы. nil означает, что файл не передан.
type FileUpload struct {
	File        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// UploadTarget — каталог внутри FILE_UPLOAD_PATH и имя файла без расширения.
// Ext, если задан, заменяет расширение исходного файла.
type UploadTarget struct {
	Dir  string
	Name string
	Ext  string
}

func CoverTarget(articleID int64) UploadTarget {
	return UploadTarget{Dir: "covers", Name: fmt.Sprintf("cover_%d", articleID)}
}

func AvatarTarget(userID int64) UploadTarget {
	return UploadTarget{Dir: "avatars", Name: fmt.Sprintf("avatar_%d", userID)}
}

var (
	LogoTarget    = UploadTarget{Dir: "logo", Name: "logo"}
	FaviconTarget = UploadTarget{Dir: "logo", Name: "favicon", Ext: ".ico"}
)

const sniffLen = 512

type Uploader struct {
	root    string
	maxSize int64
}

func NewUploader(root string, maxSize int64) *Uploader {
	return &Uploader{root: root, maxSize: maxSize}
}

func (u *Uploader) Root() string { return u.root }

// Save проверяет файл (MIME из заголовка, сигнатура, размер) и только затем пишет его на диск:
// сначала во временный файл, потом rename. Возвращает публичный путь /uploads/<dir>/<name>.
func (u *Uploader) Save(ctx context.Context, up *FileUpload, t UploadTarget) (string, error) {
	log := logger.WithCtx(ctx)

	head, sniffed, err := u.validate(up)
	if err != nil {
		observability.Uploads.WithLabelValues(t.Dir, "rejected").Inc()
		log.Warn("Файл отклонён", zap.String("dir", t.Dir), zap.Error(err))
		return "", err
	}

	ext := t.Ext
	if ext == "" {
		ext = extensionFor(up.Filename, sniffed)
	}
	name := t.Name + ext

	if err := u.write(filepath.Join(u.root, t.Dir), name, io.MultiReader(bytes.NewReader(head), up.File)); err != nil {
		observability.Uploads.WithLabelValues(t.Dir, "failed").Inc()
		if models.HasCode(err, models.CodeValidation) {
			return "", err
		}
		log.Error("Ошибка записи файла", zap.String("dir", t.Dir), zap.String("name", name), zap.Error(err))
		return "", models.NewInternalError(i18n.MsgUploadFailed, err)
	}

	observability.Uploads.WithLabelValues(t.Dir, "accepted").Inc()
	public := path.Join("/uploads", t.Dir, name)
	log.Info("Файл загружен", zap.String("path", public), zap.Int64("size", up.Size))
	return public, nil
}

func (u *Uploader) validate(up *FileUpload) ([]byte, string, error) {
	if up == nil || up.File == nil {
		return nil, "", models.NewValidationError(i18n.MsgUploadMissing)
	}
	declared := strings.ToLower(strings.TrimSpace(up.ContentType))
	if !strings.HasPrefix(declared, "image") {
		return nil, "", models.NewValidationError(i18n.MsgUploadNotImage)
	}
	if up.Size > u.maxSize {
		return nil, "", models.NewValidationError(i18n.MsgUploadTooLarge, utils.HumanSize(u.maxSize))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.File, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", models.NewInternalError(i18n.MsgUploadFailed, err)
	}
	head = head[:n]
	if n == 0 {
		return nil, "", models.NewValidationError(i18n.MsgUploadMissing)
	}

	sniffed := http.DetectContentType(head)
	// SVG по сигнатуре определяется как text/xml или text/plain.
	isSVG := declared == "image/svg+xml" && (strings.HasPrefix(sniffed, "text/xml") || strings.HasPrefix(sniffed, "text/plain"))
	if !strings.HasPrefix(sniffed, "image/") && !isSVG {
		return nil, "", models.NewValidationError(i18n.MsgUploadNotImage)
	}
	if isSVG {
		sniffed = declared
	}
	return head, sniffed, nil
}

func (u *Uploader) write(dir, name string, r io.Reader) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	// заголовок Size мог соврать, поэтому лимит проверяется и при копировании
	n, err := io.Copy(tmp, io.LimitReader(r, u.maxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n > u.maxSize {
		return models.NewValidationError(i18n.MsgUploadTooLarge, utils.HumanSize(u.maxSize))
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

func extensionFor(filename, sniffed string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	switch sniffed {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, _ := mime.ExtensionsByType(sniffed); len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
