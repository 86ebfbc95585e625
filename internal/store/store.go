package store

import (
	"context"
	"time"
)

// Sample 是一次轮询中单个设备的能耗读数。
type Sample struct {
	RecordedAt time.Time
	Campaign   string
	DurationMS int64
	DeviceID   int
	EnergyMJ   int64
}

type Store interface {
	Insert(ctx context.Context, sample *Sample) error
	Recent(ctx context.Context, limit int) ([]Sample, error)
	Close() error
}
