package service

import (
	"VaultKeeper/internal/security"
	"context"
)

// secretCipher: шифрование секретов; реализуется crypto.Cipher.
type secretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// securityTracker: проверки оракулов с уже применённой политикой fail-open;
// реализуется security.Tracker.
type securityTracker interface {
	CheckPassword(ctx context.Context, password string) security.BreachResult
	CheckURL(ctx context.Context, rawURL string) security.URLResult
}
