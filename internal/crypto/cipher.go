// Package crypto шифрует секреты хранилища симметричным ключом сервера.
//
// Формат шифртекста: "ivHex:cipherHex" (legacy) или "aes:ivHex:cipherHex"
// (с тегом алгоритма). Decrypt понимает оба варианта.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDecryption: шифртекст повреждён или зашифрован другим ключом.
var ErrDecryption = errors.New("decryption failed")

const (
	tagAES    = "aes"
	separator = ":"
)

// Cipher держит ключ AES-256, выведенный один раз при старте сервиса.
// Значение неизменяемо и безопасно для конкурентного использования.
type Cipher struct {
	block cipher.Block
}

// New выводит ключ как SHA-256 от секрета из конфигурации.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("empty encryption secret")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return &Cipher{block: block}, nil
}

// Encrypt шифрует plaintext в режиме CBC со свежим случайным IV.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + separator + hex.EncodeToString(out), nil
}

// Decrypt расшифровывает значение в любом из поддерживаемых форматов.
// Любая ошибка разбора или проверки паддинга оборачивает ErrDecryption.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	env, err := parseEnvelope(ciphertext)
	if err != nil {
		return "", err
	}

	switch env.scheme {
	case schemeLegacy, schemeTagged:
		// оба формата используют AES-256-CBC, различается только запись
		return c.decryptCBC(env)
	default:
		return "", fmt.Errorf("%w: unsupported scheme", ErrDecryption)
	}
}

func (c *Cipher) decryptCBC(env envelope) (string, error) {
	if len(env.data) == 0 || len(env.data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a multiple of the block size", ErrDecryption)
	}
	out := make([]byte, len(env.data))
	cipher.NewCBCDecrypter(c.block, env.iv).CryptBlocks(out, env.data)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

type scheme int

const (
	schemeLegacy scheme = iota // ivHex:cipherHex
	schemeTagged               // aes:ivHex:cipherHex
)

// envelope: разобранный шифртекст до выбора алгоритма.
type envelope struct {
	scheme scheme
	iv     []byte
	data   []byte
}

func parseEnvelope(s string) (envelope, error) {
	parts := strings.Split(s, separator)

	var env envelope
	var ivHex, dataHex string
	switch len(parts) {
	case 2:
		env.scheme = schemeLegacy
		ivHex, dataHex = parts[0], parts[1]
	case 3:
		if parts[0] != tagAES {
			return envelope{}, fmt.Errorf("%w: unknown algorithm tag %q", ErrDecryption, parts[0])
		}
		env.scheme = schemeTagged
		ivHex, dataHex = parts[1], parts[2]
	default:
		return envelope{}, fmt.Errorf("%w: malformed ciphertext", ErrDecryption)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: iv is not hex", ErrDecryption)
	}
	if len(iv) != aes.BlockSize {
		return envelope{}, fmt.Errorf("%w: invalid iv length %d", ErrDecryption, len(iv))
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: ciphertext is not hex", ErrDecryption)
	}

	env.iv = iv
	env.data = data
	return env, nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrDecryption)
		}
	}
	return b[:len(b)-n], nil
}
