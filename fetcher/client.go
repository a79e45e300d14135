// Package fetcher 从平台拉取历史页、场次与牌谱并写入存储。
package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kevin-chtw/tw_replay/config"
)

// client 平台HTTP客户端：POST表单、配置头、超时
type client struct {
	http *http.Client
	cfg  *config.Config
}

func newClient(cfg *config.Config) *client {
	timeout := time.Duration(cfg.HTTP.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &client{
		http: &http.Client{Timeout: timeout},
		cfg:  cfg,
	}
}

func (c *client) baseURL() string {
	base := c.cfg.HTTP.BaseURL
	if strings.Contains(base, "://") {
		return strings.TrimSuffix(base, "/")
	}
	scheme := "http"
	if c.cfg.HTTP.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + base
}

func (c *client) post(endpoint, body string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL()+endpoint, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	for key, value := range c.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post %s: status %d", endpoint, resp.StatusCode)
	}
	return data, nil
}
