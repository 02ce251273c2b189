package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Source 食譜原始資料來源
type Source interface {
	// Open 開啟 CSV 資料流，呼叫端負責關閉
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name 來源描述（用於日誌）
	Name() string
}

// FileSource 本地 CSV 檔案
type FileSource struct {
	path string
}

// NewFileSource 創建本地檔案來源
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open 開啟檔案
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	return f, nil
}

// Name 來源描述
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// HTTPSource 透過 HTTP 下載 CSV
type HTTPSource struct {
	url    string
	client *resty.Client
}

// NewHTTPSource 創建遠端來源
func NewHTTPSource(url string, timeout time.Duration, retries int) *HTTPSource {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "text/csv, text/plain, */*").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &HTTPSource{
		url:    url,
		client: client,
	}
}

// Open 下載整份 CSV
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("catalog server returned status %d", resp.StatusCode())
	}

	common.LogDebug("Catalog downloaded",
		zap.String("url", s.url),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", resp.Time()),
	)

	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}

// Name 來源描述
func (s *HTTPSource) Name() string {
	return "url:" + s.url
}

// NewSource 依設定選擇來源，URL 優先
func NewSource(cfg config.CatalogConfig) (Source, error) {
	switch {
	case cfg.URL != "":
		return NewHTTPSource(cfg.URL, cfg.Timeout, cfg.Retries), nil
	case cfg.Path != "":
		return NewFileSource(cfg.Path), nil
	default:
		return nil, fmt.Errorf("catalog path or url is required")
	}
}
