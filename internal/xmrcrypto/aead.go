package xmrcrypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealScalar AEAD-encrypts a 32-byte scalar payload under enc_key_txin_alpha.
// The key is single-use per the spec (one enc_key per input index per
// session), so a fixed zero nonce is safe here and matches the reference's
// choice to skip nonce management entirely for this key.
func SealScalar(key [32]byte, plain []byte) ([]byte, error) {
	if len(plain) != ScalarSize {
		return nil, fmt.Errorf("xmrcrypto: AEAD payload must be %d bytes, got %d", ScalarSize, len(plain))
	}
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("xmrcrypto: AEAD init: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	return aead.Seal(nil, nonce, plain, nil), nil
}

// OpenScalar is the inverse of SealScalar; a decryption failure is always
// an Authentication error in the caller's sense.
func OpenScalar(key [32]byte, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("xmrcrypto: AEAD init: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("xmrcrypto: AEAD open: %w", err)
	}
	return plain, nil
}
