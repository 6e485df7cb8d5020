package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	DefaultShortCodeLength = 8
	// URL-safe алфавит: код можно вставлять в путь без экранирования
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

func GenerateShortCode() (string, error) {
	return GenerateShortCodeWithLength(DefaultShortCodeLength)
}

func GenerateShortCodeWithLength(length int) (string, error) {
	return randomString(length, alphabet)
}

// GenerateState возвращает случайное значение для OAuth state
func GenerateState() (string, error) {
	return randomString(32, alphabet)
}

func randomString(length int, chars string) (string, error) {
	code := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(chars)))

	for i := range code {
		randomIndex, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		code[i] = chars[randomIndex.Int64()]
	}

	return string(code), nil
}

func IsURLSafe(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '-'
}
