package chain

import (
	"context"
	"strings"
	"time"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/logger"
)

const maxAttempts = 3

// withRetry 对传输层错误做有界指数退避重试。
// 合约回滚是确定性的，重试只会浪费时间和gas，不重试。
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errs.IsRetryable(err) || attempt == maxAttempts {
			return err
		}

		delay := time.Duration(1<<uint(attempt-1)) * time.Second
		logger.Warn("Chain call failed (attempt %d/%d), retrying in %s: %v", attempt, maxAttempts, delay, err)

		select {
		case <-ctx.Done():
			return errs.Wrap(errs.KindTransport, "chain call cancelled", ctx.Err())
		case <-time.After(delay):
		}
	}
	return err
}

// classifyCallError 区分合约回滚与传输层故障
func classifyCallError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert") {
		return errs.Wrap(errs.KindReverted, "rejected by contract", err)
	}
	return errs.Wrap(errs.KindTransport, "chain rpc error", err)
}
