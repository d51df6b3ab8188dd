package pagekit

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// EncryptionKeySize is the key length of EncryptedEncoder.
	EncryptionKeySize = 32
	nonceSize         = 24
)

// EncryptedEncoder seals the inner token with NaCl secretbox
// (XSalsa20-Poly1305). Every Encode call draws a fresh random nonce:
//
//	base64url(nonce || secretbox(inner token))
//
// Decode fails with ErrTamperedCursor on any truncation, modification or
// wrong key, without telling those cases apart.
type EncryptedEncoder struct {
	inner Encoder
	key   [EncryptionKeySize]byte
	rand  io.Reader
}

// NewEncryptedEncoder encrypts tokens of inner with a 32-byte key, see
// GenerateKey.
func NewEncryptedEncoder(inner Encoder, key []byte) (*EncryptedEncoder, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: encrypted encoder needs an inner encoder", ErrInvalidConfig)
	}
	if len(key) != EncryptionKeySize {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes, got %d", ErrInvalidConfig, EncryptionKeySize, len(key))
	}

	e := &EncryptedEncoder{inner: inner, rand: rand.Reader}
	copy(e.key[:], key)

	return e, nil
}

// GenerateKey returns a random key suitable for NewEncryptedEncoder.
func GenerateKey() ([]byte, error) {
	key := make([]byte, EncryptionKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("cannot generate encryption key: %w", err)
	}

	return key, nil
}

func (e *EncryptedEncoder) Encode(position Position) (string, error) {
	payload, err := e.inner.Encode(position)
	if err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err = io.ReadFull(e.rand, nonce[:]); err != nil {
		return "", fmt.Errorf("cannot generate cursor nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(payload), &nonce, &e.key)

	return _encoder.EncodeToString(sealed), nil
}

func (e *EncryptedEncoder) Decode(token string) (Position, error) {
	sealed, err := _encoder.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor: %v", ErrMalformedCursor, err)
	}

	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrTamperedCursor
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	payload, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &e.key)
	if !ok {
		return nil, ErrTamperedCursor
	}

	return e.inner.Decode(string(payload))
}

var _ Encoder = (*EncryptedEncoder)(nil)
