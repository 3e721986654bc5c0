package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName: имя cookie с токеном доступа.
	CookieName = "auth_token"
	tokenTTL   = 24 * time.Hour
)

type ctxKey struct{}

var userIDKey ctxKey

var errInvalidToken = errors.New("invalid token")

// Claims: стандартные утверждения плюс идентификатор владельца хранилища.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// IssueToken подписывает HS256-токен для userID.
// Сервис токены не выдаёт: функция нужна для тестов и ручной выдачи через флаг сервера.
func IssueToken(userID int64, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})
	return token.SignedString([]byte(secret))
}

func parseToken(tokenString, secret string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, errInvalidToken
	}
	return claims.UserID, nil
}

// SetLoginCookie выставляет cookie с новым токеном для userID.
func SetLoginCookie(w http.ResponseWriter, userID int64, secret string) error {
	token, err := IssueToken(userID, secret, tokenTTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(tokenTTL),
	})
	return nil
}

// WithAuth проверяет токен из cookie auth_token или заголовка Authorization: Bearer.
// Запрос без валидного токена проходит дальше анонимным, решение принимает хендлер.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := parseToken(token, secret)
			if err != nil {
				if logger != nil {
					logger.Debugw("auth token rejected", "path", r.URL.Path, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// GetUserIDFromContext достаёт id владельца, положенный WithAuth.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
