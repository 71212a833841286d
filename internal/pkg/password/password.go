// Package password verifies a supplied link password against its stored
// value. Two storage schemes coexist: bcrypt hashes (everything written
// today) and a legacy symmetric scheme ("nonce:ciphertext", both hex,
// AES-256-GCM). A stored value splitting into exactly two colon-delimited
// parts selects the legacy scheme.
//
// The two-part marker is a compatibility heuristic inherited from the stored
// data, not a designed discriminator — bcrypt output never contains a colon,
// so it holds for rows this service writes, but do not strengthen it without
// migrating old rows first.
package password

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verify compares supplied against the stored value under whichever scheme
// the stored value uses. key is only consulted for the legacy scheme and may
// be nil otherwise.
func Verify(stored, supplied string, key []byte) (bool, error) {
	if parts := strings.Split(stored, ":"); len(parts) == 2 {
		plain, err := decrypt(parts[0], parts[1], key)
		if err != nil {
			return false, fmt.Errorf("decrypt stored password: %w", err)
		}
		return subtle.ConstantTimeCompare([]byte(plain), []byte(supplied)) == 1, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare stored password: %w", err)
}

// Encrypt produces a legacy-scheme stored value. Kept for migrations and
// tests; new links store bcrypt hashes.
func Encrypt(plain string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	ct := gcm.Seal(nil, nonce, []byte(plain), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ct), nil
}

func decrypt(nonceHex, ctHex string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	plain, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plain), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
