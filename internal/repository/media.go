package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"travelblog/internal/models"
)

// MediaStore — медиатека в JSON-файле. Каждое чтение-изменение-запись выполняется под мьютексом,
// файл заменяется атомарно (временный файл + rename).
type MediaStore struct {
	mu   sync.Mutex
	path string
}

func NewMediaStore(path string) *MediaStore {
	return &MediaStore{path: path}
}

func (s *MediaStore) load() ([]*models.Media, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*models.Media{}, nil
	}
	if err != nil {
		return nil, err
	}
	items := []*models.Media{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return items, nil
}

func (s *MediaStore) save(items []*models.Media) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".media-*.json")
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
	return os.Rename(tmp.Name(), s.path)
}

// List возвращает записи от новых к старым; typePrefix ("image/", "image/png") фильтрует по MIME.
func (s *MediaStore) List(_ context.Context, typePrefix string) ([]*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*models.Media, 0, len(items))
	for _, m := range items {
		if typePrefix == "" || strings.HasPrefix(m.Type, typePrefix) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (s *MediaStore) Get(_ context.Context, id string) (*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, m := range items {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MediaStore) Add(_ context.Context, m *models.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(items, m))
}

// Update применяет fn к записи и сохраняет результат, если fn не вернула ошибку.
func (s *MediaStore) Update(_ context.Context, id string, fn func(*models.Media) error) (*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, m := range items {
		if m.ID != id {
			continue
		}
		if err := fn(m); err != nil {
			return nil, err
		}
		if err := s.save(items); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, ErrNotFound
}

// Delete удаляет запись и возвращает её (для удаления файлов).
func (s *MediaStore) Delete(_ context.Context, id string) (*models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	for i, m := range items {
		if m.ID == id {
			rest := append(items[:i:i], items[i+1:]...)
			if err := s.save(rest); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, ErrNotFound
}
