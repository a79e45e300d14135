package storage

import (
	"fmt"

	"github.com/kevin-chtw/tw_replay/config"
)

// Open 按配置选择存储后端
func Open(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "data"
		}
		return NewFileStorage(dir)
	case "mongo":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDB, cfg.MongoCol)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
