package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"travelblog/internal/i18n"
	"travelblog/internal/models"
	"travelblog/internal/services"
	"travelblog/internal/utils"

	"github.com/gorilla/mux"
)

const (
	maxJSONBody     = 1 << 20
	multipartSlack  = 1 << 20
	uploadFieldName = "file"
	mediaFieldName  = "image"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return models.NewValidationError(i18n.MsgInvalidJSON)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(i18n.MsgInvalidID)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	return n
}

// streamFile возвращает поле file multipart-формы без буферизации: тело читается только
// когда сервис начнёт читать File. nil — файла в запросе нет.
func streamFile(w http.ResponseWriter, r *http.Request, maxSize int64) (*services.FileUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartSlack)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, uploadReadError(err, maxSize)
		}
		if part.FormName() == uploadFieldName && part.FileName() != "" {
			return &services.FileUpload{
				File:        part,
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
			}, nil
		}
	}
}

// formFile разбирает всю форму (нужны и текстовые поля) и возвращает файл из поля field с закрывающей функцией.
func formFile(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (*services.FileUpload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, uploadReadError(err, maxSize)
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, uploadReadError(err, maxSize)
	}
	return fileUpload(file, header), func() { _ = file.Close() }, nil
}

func fileUpload(f multipart.File, h *multipart.FileHeader) *services.FileUpload {
	return &services.FileUpload{
		File:        f,
		Filename:    h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        h.Size,
	}
}

func uploadReadError(err error, maxSize int64) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return models.NewValidationError(i18n.MsgUploadTooLarge, utils.HumanSize(maxSize))
	}
	return models.NewValidationError(i18n.MsgUploadMissing)
}
