package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"meal-matcher/internal/infrastructure/config"
	"meal-matcher/internal/metrics"
	"meal-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// Job 在 worker 上執行的配對工作
type Job func(ctx context.Context) error

// Request 隊列請求
type Request struct {
	Context context.Context
	Job     Job
	Result  chan error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器，限制同時執行的組合搜尋數量
type Manager struct {
	config    config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器並啟動 workers
func NewManager(cfg config.QueueConfig) *Manager {
	m := &Manager{
		config: cfg,
		queue:  make(chan *Request, cfg.MaxSize),
		done:   make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("Match queue started",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return m
}

// Do 將工作加入隊列並等待完成；隊列已滿時立即回傳 common.ErrQueueFull
func (m *Manager) Do(ctx context.Context, job Job) error {
	req := &Request{
		Context: ctx,
		Job:     job,
		Result:  make(chan error, 1),
	}

	select {
	case <-m.done:
		return common.ErrServiceUnavailable.WithError(fmt.Errorf("queue manager is closed"))
	default:
	}

	select {
	case m.queue <- req:
		metrics.QueueLength.Set(float64(len(m.queue)))
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
	default:
		return common.ErrQueueFull
	}

	select {
	case err := <-req.Result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker 處理隊列中的工作
func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case req := <-m.queue:
			metrics.QueueLength.Set(float64(len(m.queue)))
			err := m.run(id, req)
			atomic.AddInt64(&m.processed, 1)
			req.Result <- err
		case <-m.done:
			return
		}
	}
}

// run 執行單一工作，panic 轉為錯誤避免 worker 消失
func (m *Manager) run(id int, req *Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Match job panic recovered",
				zap.Int("worker", id),
				zap.Any("error", r),
			)
			err = fmt.Errorf("match job panicked: %v", r)
		}
	}()

	// 等待期間呼叫端已放棄，不再執行
	if err := req.Context.Err(); err != nil {
		return err
	}
	return req.Job(req.Context)
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 關閉隊列管理器並等待 workers 結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}
