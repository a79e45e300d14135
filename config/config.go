package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// HTTPConfig 平台接口参数
type HTTPConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	RecordEndpoint  string `mapstructure:"record_endpoint"`
	HistoryEndpoint string `mapstructure:"history_endpoint"`
	SessionEndpoint string `mapstructure:"session_endpoint"`
	TimeoutMs       int    `mapstructure:"timeout_ms"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// StorageConfig 存储后端选择
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // file | mongo
	Dir      string `mapstructure:"dir"`
	MongoURI string `mapstructure:"mongo_uri"`
	MongoDB  string `mapstructure:"mongo_db"`
	MongoCol string `mapstructure:"mongo_col"`
}

// Config 抓取与分析工具的完整配置
type Config struct {
	HTTP    HTTPConfig        `mapstructure:"http"`
	Headers map[string]string `mapstructure:"headers"`
	Storage StorageConfig     `mapstructure:"storage"`
}

var (
	mu   sync.RWMutex
	conf *Config
)

// Load 读取配置文件并监听变更
func Load(configFile string) error {
	v := viper.New()
	v.SetConfigFile(configFile)

	v.SetDefault("http.timeout_ms", 10000)
	v.SetDefault("http.use_ssl", true)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.mongo_db", "tw_replay")
	v.SetDefault("storage.mongo_col", "kv")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", configFile, err)
	}
	if err := apply(v); err != nil {
		return err
	}

	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		logger.Log.Infof("config file changed: %s", in.Name)
		if err := apply(v); err != nil {
			logger.Log.Errorf("reload config: %v", err)
		}
	})
	return nil
}

func apply(v *viper.Viper) error {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	c.Headers = canonicalHeaders(c.Headers)

	mu.Lock()
	conf = c
	mu.Unlock()
	return nil
}

// Get 当前配置；未加载时返回零值配置
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if conf == nil {
		return &Config{}
	}
	return conf
}

// canonicalHeaders 配置键转HTTP头名：下划线转连字符并逐段首字母大写
func canonicalHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		parts := strings.Split(key, "_")
		for i, p := range parts {
			if p == "" {
				continue
			}
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
		out[strings.Join(parts, "-")] = value
	}
	return out
}
