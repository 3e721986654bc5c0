// Package security проверяет пароли и URL во внешних оракулах
// и сводит их вердикты к безопасным значениям по умолчанию при недоступности.
package security

import (
	"context"
	"errors"
)

// ErrOracleUnavailable: оракул не настроен, недоступен или ответил ошибкой.
var ErrOracleUnavailable = errors.New("security oracle unavailable")

// BreachResult: вердикт проверки пароля по базам утечек.
type BreachResult struct {
	IsCompromised bool
	BreachCount   uint
}

// URLResult: вердикт проверки URL.
type URLResult struct {
	IsSafe      bool
	ThreatTypes []string
}

// BreachChecker: порт оракула утечек.
type BreachChecker interface {
	CheckPasswordBreach(ctx context.Context, password string) (BreachResult, error)
}

// URLChecker: порт оракула безопасности URL.
type URLChecker interface {
	CheckURLSafety(ctx context.Context, rawURL string) (URLResult, error)
}
