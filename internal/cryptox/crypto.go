// Package cryptox holds the key-derivation helpers used for the local
// device passcode that backs the app lock.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/orbit/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of freshly generated passcode salts.
const SaltSize = 16

// DeriveKey stretches a passcode with argon2id.
func DeriveKey(passcode []byte, salt []byte) []byte {
	return argon2.IDKey(passcode, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier returns a value that can be stored to check a derived key
// later without storing the key itself.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewPasscodeVerifier generates a salt and the matching verifier for passcode.
func NewPasscodeVerifier(passcode []byte) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(passcode, salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// CheckPasscode reports whether passcode matches the stored salt/verifier.
// The comparison is constant-time.
func CheckPasscode(passcode, salt, verifier []byte) bool {
	if len(salt) == 0 || len(verifier) == 0 {
		return false
	}
	key := DeriveKey(passcode, salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}
