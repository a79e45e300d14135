package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// FileStorage 平面JSON文件树：键按'/'映射为目录层级，值存为<key>.json
type FileStorage struct {
	baseDir string
}

func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", baseDir, err)
	}
	return &FileStorage{baseDir: baseDir}, nil
}

func (s *FileStorage) keyToPath(key string) string {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if filepath.Ext(path) != ".json" {
		path += ".json"
	}
	return path
}

func (s *FileStorage) pathToKey(path string) string {
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, ".json")
}

func (s *FileStorage) SaveJSON(key string, value any) error {
	path := s.keyToPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", key, err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	logger.Log.Debugf("saved json to %s", path)
	return nil
}

func (s *FileStorage) LoadJSON(key string, value any) error {
	data, err := os.ReadFile(s.keyToPath(key))
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *FileStorage) Exists(key string) bool {
	_, err := os.Stat(s.keyToPath(key))
	return err == nil
}

func (s *FileStorage) Remove(key string) error {
	return os.Remove(s.keyToPath(key))
}

func (s *FileStorage) ListKeys(prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		key := s.pathToKey(path)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return keys, err
}

func (s *FileStorage) Close() error { return nil }
