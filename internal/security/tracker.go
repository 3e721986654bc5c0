package security

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Tracker вызывает оракулы с таймаутом и сводит сбои к безопасному вердикту:
// запись не блокируется из-за недоступности внешнего сервиса (fail-open).
type Tracker struct {
	breach  BreachChecker
	urls    URLChecker
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// NewTracker принимает nil для неподключённого оракула.
func NewTracker(breach BreachChecker, urls URLChecker, timeout time.Duration, logger *zap.SugaredLogger) *Tracker {
	return &Tracker{breach: breach, urls: urls, timeout: timeout, logger: logger}
}

// CheckPassword возвращает «не скомпрометирован», если оракул недоступен.
func (t *Tracker) CheckPassword(ctx context.Context, password string) BreachResult {
	if t.breach == nil {
		t.debug("breach check skipped", fmt.Errorf("%w: not configured", ErrOracleUnavailable))
		return BreachResult{}
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	res, err := t.breach.CheckPasswordBreach(ctx, password)
	if err != nil {
		t.warn("breach check failed, assuming not compromised", fmt.Errorf("%w: %v", ErrOracleUnavailable, err))
		return BreachResult{}
	}
	return res
}

// CheckURL возвращает «безопасен», если оракул недоступен.
func (t *Tracker) CheckURL(ctx context.Context, rawURL string) URLResult {
	if t.urls == nil {
		t.debug("url safety check skipped", fmt.Errorf("%w: not configured", ErrOracleUnavailable))
		return URLResult{IsSafe: true}
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	res, err := t.urls.CheckURLSafety(ctx, rawURL)
	if err != nil {
		t.warn("url safety check failed, assuming safe", fmt.Errorf("%w: %v", ErrOracleUnavailable, err))
		return URLResult{IsSafe: true}
	}
	return res
}

func (t *Tracker) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *Tracker) warn(msg string, err error) {
	if t.logger == nil {
		return
	}
	t.logger.Warnw(msg, "error", err)
}

// о неподключённом оракуле сообщаем один раз при старте, здесь: только debug
func (t *Tracker) debug(msg string, err error) {
	if t.logger == nil {
		return
	}
	t.logger.Debugw(msg, "error", err)
}
