package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

// Store хранит объекты файлами в локальном каталоге. Публичные URL указывают на
// маршрут /blobs/*key этого же сервиса.
type Store struct {
	rootPath      string
	publicBaseURL string
}

// New создаёт файловое хранилище.
func New(rootPath, publicBaseURL string) (*Store, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("fsstore: не удалось создать каталог %s: %w", rootPath, err)
	}
	return &Store{rootPath: rootPath, publicBaseURL: publicBaseURL}, nil
}

// Put записывает объект через временный файл и rename. Все объекты раздаются
// публично, поэтому opts.Public здесь не влияет на запись.
func (s *Store) Put(ctx context.Context, key string, content []byte, opts repository.PutOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := objectstore.CleanKey(key)
	if err != nil {
		return "", err
	}

	targetPath := filepath.Join(s.rootPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return "", fmt.Errorf("fsstore: не удалось создать каталог: %w", err)
	}

	tempPath := targetPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("fsstore: ошибка записи файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("fsstore: не удалось переименовать файл: %w", err)
	}

	return objectstore.PublicURL(s.publicBaseURL, key), nil
}

// List возвращает объекты, чей ключ начинается с prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]repository.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Обходим только каталог префикса, а не всё хранилище.
	startDir := s.rootPath
	if dir := path.Dir(prefix); dir != "." && !strings.Contains(dir, "..") {
		startDir = filepath.Join(s.rootPath, filepath.FromSlash(dir))
	}

	objects := make([]repository.Object, 0)
	err := filepath.WalkDir(startDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.rootPath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, repository.Object{
				Pathname: key,
				URL:      objectstore.PublicURL(s.publicBaseURL, key),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fsstore: ошибка обхода каталога: %w", err)
	}
	return objects, nil
}

// Get читает объект для раздачи по публичному URL.
func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	key, err := objectstore.CleanKey(key)
	if err != nil {
		return nil, "", apperror.ErrObjectNotFound
	}

	content, err := os.ReadFile(filepath.Join(s.rootPath, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", apperror.ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("fsstore: ошибка чтения файла: %w", err)
	}
	return content, contentTypeByKey(key), nil
}

// Ping проверяет, что корневой каталог доступен.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.rootPath)
	if err != nil {
		return fmt.Errorf("fsstore: каталог недоступен: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("fsstore: %s не является каталогом", s.rootPath)
	}
	return nil
}

func contentTypeByKey(key string) string {
	if path.Ext(key) == ".json" {
		return "application/json; charset=utf-8"
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
