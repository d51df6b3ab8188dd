package pagekit

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// SignatureAlgorithm selects the HMAC hash of a SignedEncoder.
type SignatureAlgorithm string

const (
	SignatureSHA256 SignatureAlgorithm = "sha256"
	SignatureSHA384 SignatureAlgorithm = "sha384"
	SignatureSHA512 SignatureAlgorithm = "sha512"
)

func (a SignatureAlgorithm) hash() (func() hash.Hash, error) {
	switch a {
	case SignatureSHA256, "":
		return sha256.New, nil
	case SignatureSHA384:
		return sha512.New384, nil
	case SignatureSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: unsupported signature algorithm '%s'", ErrInvalidConfig, a)
	}
}

const signatureSeparator = "."

// SignedEncoder appends an HMAC of the inner token:
//
//	<inner token>.<hex HMAC>
//
// Decode verifies the signature before handing the payload to the inner
// encoder.
type SignedEncoder struct {
	inner  Encoder
	secret []byte
	hash   func() hash.Hash
}

// NewSignedEncoder signs tokens of inner with secret. An empty algorithm means
// SHA-256.
func NewSignedEncoder(inner Encoder, secret []byte, algorithm SignatureAlgorithm) (*SignedEncoder, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: signed encoder needs an inner encoder", ErrInvalidConfig)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret must not be empty", ErrInvalidConfig)
	}

	h, err := algorithm.hash()
	if err != nil {
		return nil, err
	}

	return &SignedEncoder{
		inner:  inner,
		secret: append([]byte(nil), secret...),
		hash:   h,
	}, nil
}

func (e *SignedEncoder) Encode(position Position) (string, error) {
	payload, err := e.inner.Encode(position)
	if err != nil {
		return "", err
	}

	return payload + signatureSeparator + e.sign(payload), nil
}

func (e *SignedEncoder) Decode(token string) (Position, error) {
	idx := strings.LastIndex(token, signatureSeparator)
	if idx <= 0 || idx == len(token)-1 {
		return nil, fmt.Errorf("%w: signed cursor must have exactly a payload and a signature", ErrMalformedCursor)
	}

	payload, signature := token[:idx], token[idx+1:]
	if !hmac.Equal([]byte(signature), []byte(e.sign(payload))) {
		return nil, ErrTamperedCursor
	}

	return e.inner.Decode(payload)
}

func (e *SignedEncoder) sign(payload string) string {
	mac := hmac.New(e.hash, e.secret)
	mac.Write([]byte(payload))

	return hex.EncodeToString(mac.Sum(nil))
}

var _ Encoder = (*SignedEncoder)(nil)
