package pagekit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// _encoder is strict so that every token has exactly one textual form.
var _encoder = base64.RawURLEncoding.Strict()

// Encoder turns a Position into an opaque token and back. Decode must reject
// anything it did not produce.
type Encoder interface {
	Encode(position Position) (string, error)
	Decode(token string) (Position, error)
}

// PlainEncoder encodes positions as unpadded URL-safe base64 of compact JSON.
// Tokens are readable by anyone, wrap it with SignedEncoder or
// EncryptedEncoder when that matters.
type PlainEncoder struct{}

func NewPlainEncoder() PlainEncoder {
	return PlainEncoder{}
}

func (PlainEncoder) Encode(position Position) (string, error) {
	if position == nil {
		position = Position{}
	}

	jTok, err := json.Marshal(position)
	if err != nil {
		return "", fmt.Errorf("cannot marshal cursor position: %w", err)
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, jTok); err != nil {
		return "", fmt.Errorf("cannot compact cursor position: %w", err)
	}

	return _encoder.EncodeToString(buf.Bytes()), nil
}

func (PlainEncoder) Decode(token string) (Position, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedCursor)
	}

	jsonData, err := _encoder.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor: %v", ErrMalformedCursor, err)
	}

	if !json.Valid(jsonData) {
		return nil, fmt.Errorf("%w: cursor is not valid JSON", ErrMalformedCursor)
	}

	var position Position
	if err = json.Unmarshal(jsonData, &position); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json encoded cursor: %v", ErrMalformedCursor, err)
	}

	if position == nil {
		return nil, fmt.Errorf("%w: cursor must be a JSON object", ErrMalformedCursor)
	}

	return position, nil
}

var _ Encoder = PlainEncoder{}
