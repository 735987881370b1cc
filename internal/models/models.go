package models

// This file provides a central import point for all models
// and helper functions shared across them

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// AllModels returns all model types for GORM operations
// Note: Migrations are handled by golang-migrate, not GORM AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&OTP{},
		&Session{},
		&OAuthAccount{},
		&Collection{},
		&Record{},
		&ActivityLog{},
	}
}

// GenerateSecureToken returns a URL-safe random token built from n bytes of
// entropy. Used for refresh tokens and OAuth state.
func GenerateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 digest used to store refresh tokens and
// OTP codes. Plaintext never touches the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
