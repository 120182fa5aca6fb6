package utils

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Throttle 外部调用节流
type Throttle interface {
	// Wait 阻塞直到允许下一次调用，ctx 取消时返回错误
	Wait(ctx context.Context) error
}

// NewThrottle 按策略创建节流器：fixed 为固定间隔，bucket 为令牌桶
func NewThrottle(policy string, interval time.Duration, burst int) (Throttle, error) {
	switch policy {
	case "", "fixed":
		return NewFixedInterval(interval), nil
	case "bucket":
		return NewTokenBucket(interval, burst), nil
	default:
		return nil, fmt.Errorf("未知的节流策略: %s", policy)
	}
}

// limiterThrottle 基于 x/time/rate 的实现
type limiterThrottle struct {
	limiter *rate.Limiter
}

func (t *limiterThrottle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// NewFixedInterval 两次调用之间至少间隔 interval，首次调用不等待
func NewFixedInterval(interval time.Duration) Throttle {
	if interval <= 0 {
		return NoThrottle{}
	}
	return &limiterThrottle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// NewTokenBucket 平均每 interval 一次，允许突发 burst 次
func NewTokenBucket(interval time.Duration, burst int) Throttle {
	if interval <= 0 {
		return NoThrottle{}
	}
	if burst < 1 {
		burst = 1
	}
	return &limiterThrottle{limiter: rate.NewLimiter(rate.Every(interval), burst)}
}

// NoThrottle 不限速，仍然响应 ctx 取消
type NoThrottle struct{}

func (NoThrottle) Wait(ctx context.Context) error {
	return ctx.Err()
}
