package model

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/qbiq/biq-go/pkg/ident"
)

// argon2id parameters for alias passwords.
const (
	pwSaltLen = 16
	pwKeyLen  = 32
	pwTime    = 1
	pwMemory  = 64 * 1024
	pwThreads = 4
)

// ErrEmptyPassword is returned when deriving a hash from an empty password.
var ErrEmptyPassword = errors.New("empty password")

// NewPasswordAlias returns an alias whose salt and hash are derived from
// password. Both are stored base64 (standard encoding).
func NewPasswordAlias(address string, account ident.AccountID, priority int, flags uint64, password string) (Alias, error) {
	if password == "" {
		return Alias{}, ErrEmptyPassword
	}
	salt := make([]byte, pwSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return Alias{}, fmt.Errorf("generate salt: %w", err)
	}
	a := NewAlias(address, account, priority, flags)
	saltText := base64.StdEncoding.EncodeToString(salt)
	hashText := base64.StdEncoding.EncodeToString(derivePassword(password, salt))
	a.PwSalt = &saltText
	a.PwHash = &hashText
	return a, nil
}

// HasPassword returns true if a carries password material.
func (a Alias) HasPassword() bool {
	return a.PwSalt != nil && a.PwHash != nil
}

// VerifyPassword reports whether password matches the alias hash. Aliases
// without password material, or with undecodable material, never match.
func (a Alias) VerifyPassword(password string) bool {
	if !a.HasPassword() {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(*a.PwSalt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(*a.PwHash)
	if err != nil || len(want) != pwKeyLen {
		return false
	}
	got := derivePassword(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func derivePassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, pwTime, pwMemory, pwThreads, pwKeyLen)
}
