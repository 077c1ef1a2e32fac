package service

import (
	"context"
	"sync/atomic"
	"time"

	"promptgate/internal/service/usage"
)

type HealthService struct {
	live  atomic.Bool
	ready atomic.Bool
	store usage.Store
}

func NewHealthService(store usage.Store) *HealthService {
	s := &HealthService{store: store}
	s.live.Store(true)
	s.ready.Store(false) // 啟動完成後再打開
	return s
}

func (s *HealthService) SetReady(v bool) {
	s.ready.Store(v)
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

func (s *HealthService) IsReady() bool {
	return s.ready.Load()
}

// Probe ping 使用紀錄儲存後端並更新 readiness
func (s *HealthService) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := s.store.Ping(ctx)
	s.ready.Store(err == nil)
	return err
}
