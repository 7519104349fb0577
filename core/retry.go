package core

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultRetryCount 默认重试次数（不含首次请求）
const DefaultRetryCount = 1

// Retrier 有界重试
// 每个逻辑操作（拉取 token、创建 ticket、下载图片、获取用户信息）各自调用一次 Retry，
// 预算互不影响：最多执行 retries+1 次。
type Retrier struct {
	retries  int
	interval time.Duration
}

// NewRetrier 创建重试器
// retries 为负数时按 0 处理；interval 为 0 时立即重试。
func NewRetrier(retries int, interval time.Duration) *Retrier {
	return &Retrier{
		retries:  max(retries, 0),
		interval: max(interval, 0),
	}
}

// MaxAttempts 最大尝试次数
func (r *Retrier) MaxAttempts() int {
	return r.retries + 1
}

func (r *Retrier) newBackOff() backoff.BackOff {
	if r.interval == 0 {
		return &backoff.ZeroBackOff{}
	}
	return backoff.NewConstantBackOff(r.interval)
}

// Permanent 标记不应重试的错误，Retry 会立即返回其原始错误
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry 执行 op 直到成功、返回 Permanent 错误或预算耗尽
// attempt 从 1 开始；耗尽时返回最后一次的错误。
func Retry[T any](ctx context.Context, r *Retrier, op func(attempt int) (T, error)) (T, error) {
	attempt := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		return op(attempt)
	},
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(uint(r.MaxAttempts())),
		backoff.WithMaxElapsedTime(0),
	)

	// 最后一次尝试返回的 Permanent 错误不会被 backoff 解包
	if perm, ok := errors.AsType[*backoff.PermanentError](err); ok {
		err = perm.Unwrap()
	}
	return res, err
}
