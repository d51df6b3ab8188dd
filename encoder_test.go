package pagekit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncoders(t *testing.T) map[string]Encoder {
	t.Helper()

	signed, err := NewSignedEncoder(PlainEncoder{}, []byte("secret"), SignatureSHA256)
	require.NoError(t, err)

	signed512, err := NewSignedEncoder(PlainEncoder{}, []byte("secret"), SignatureSHA512)
	require.NoError(t, err)

	key, err := GenerateKey()
	require.NoError(t, err)
	encrypted, err := NewEncryptedEncoder(PlainEncoder{}, key)
	require.NoError(t, err)

	signedEncrypted, err := NewSignedEncoder(encrypted, []byte("secret"), SignatureSHA384)
	require.NoError(t, err)

	return map[string]Encoder{
		"plain":             PlainEncoder{},
		"signed":            signed,
		"signed sha512":     signed512,
		"encrypted":         encrypted,
		"signed(encrypted)": signedEncrypted,
	}
}

func Test_Encoders_RoundTrip(t *testing.T) {
	positions := map[string]Position{
		"single key":     NewPosition("id", int64(42)),
		"multi key":      NewPosition("created_at", "2024-01-02T03:04:05Z", "id", int64(7), "score", 1.25),
		"unicode":        NewPosition("name", "Ünïcødé ✓ 世界"),
		"array values":   NewPosition("tags", []any{"a", int64(2), true}),
		"integral float": NewPosition("score", 2.0, "id", int64(2)),
		"float in array": NewPosition("scores", []any{3.0, 0.5}),
		"large float":    NewPosition("score", 1e21),
		"large uint":     NewPosition("hash", uint64(math.MaxUint64)),
		"empty":          Position{},
	}

	for encName, enc := range testEncoders(t) {
		for posName, position := range positions {
			t.Run(encName+" "+posName, func(t *testing.T) {
				token, err := enc.Encode(position)
				require.NoError(t, err)
				assert.NotContains(t, token, "=", "tokens are unpadded")

				got, err := enc.Decode(token)
				require.NoError(t, err)
				assert.Equal(t, position, got)
			})
		}
	}
}

func Test_PlainEncoder_Decode_Rejects(t *testing.T) {
	enc := PlainEncoder{}
	tests := map[string]string{
		"empty":        "",
		"bad base64":   "!!!",
		"padded":       _encoder.EncodeToString([]byte(`{"a":1}`)) + "==",
		"invalid json": _encoder.EncodeToString([]byte(`{"a":`)),
		"array":        _encoder.EncodeToString([]byte(`[1,2]`)),
		"null":         _encoder.EncodeToString([]byte(`null`)),
		"scalar":       _encoder.EncodeToString([]byte(`"x"`)),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := enc.Decode(token)
			require.ErrorIs(t, err, ErrMalformedCursor)
		})
	}
}

func Test_SignedEncoder_Scenario(t *testing.T) {
	enc, err := NewSignedEncoder(PlainEncoder{}, []byte("k"), "")
	require.NoError(t, err)

	token, err := enc.Encode(NewPosition("id", 42))
	require.NoError(t, err)

	payload := _encoder.EncodeToString([]byte(`{"id":42}`))
	mac := hmac.New(sha256.New, []byte("k"))
	mac.Write([]byte(payload))
	assert.Equal(t, payload+"."+hex.EncodeToString(mac.Sum(nil)), token)

	got, err := enc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, NewPosition("id", int64(42)), got)

	last := token[len(token)-1]
	replacement := byte('0')
	if last == '0' {
		replacement = '1'
	}
	_, err = enc.Decode(token[:len(token)-1] + string(replacement))
	require.ErrorIs(t, err, ErrTamperedCursor)
}

func Test_SignedEncoder_Decode_Rejects(t *testing.T) {
	enc, err := NewSignedEncoder(PlainEncoder{}, []byte("k"), SignatureSHA256)
	require.NoError(t, err)
	other, err := NewSignedEncoder(PlainEncoder{}, []byte("other"), SignatureSHA256)
	require.NoError(t, err)

	token, err := enc.Encode(NewPosition("id", 1))
	require.NoError(t, err)
	payload, signature, _ := strings.Cut(token, ".")

	forged, err := PlainEncoder{}.Encode(NewPosition("id", 2))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"no separator", payload, ErrMalformedCursor},
		{"empty payload", "." + signature, ErrMalformedCursor},
		{"empty signature", payload + ".", ErrMalformedCursor},
		{"swapped payload", forged + "." + signature, ErrTamperedCursor},
		{"uppercase signature", payload + "." + strings.ToUpper(signature), ErrTamperedCursor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := enc.Decode(tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = other.Decode(token)
	require.ErrorIs(t, err, ErrTamperedCursor, "other secret")
}

func Test_NewSignedEncoder_Config(t *testing.T) {
	_, err := NewSignedEncoder(PlainEncoder{}, nil, SignatureSHA256)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSignedEncoder(nil, []byte("k"), SignatureSHA256)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSignedEncoder(PlainEncoder{}, []byte("k"), "md5")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func Test_EncryptedEncoder(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewEncryptedEncoder(PlainEncoder{}, key)
	require.NoError(t, err)

	position := NewPosition("id", int64(42))
	first, err := enc.Encode(position)
	require.NoError(t, err)
	second, err := enc.Encode(position)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "fresh nonce per token")

	plain, err := PlainEncoder{}.Encode(position)
	require.NoError(t, err)
	raw, err := _encoder.DecodeString(first)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), plain, "payload is not readable")

	t.Run("flipped byte", func(t *testing.T) {
		for _, idx := range []int{0, nonceSize, len(raw) - 1} {
			tampered := append([]byte(nil), raw...)
			tampered[idx] ^= 0x01
			_, err := enc.Decode(_encoder.EncodeToString(tampered))
			require.ErrorIs(t, err, ErrTamperedCursor, "byte %d", idx)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := enc.Decode(_encoder.EncodeToString(raw[:nonceSize+3]))
		require.ErrorIs(t, err, ErrTamperedCursor)
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey, err := GenerateKey()
		require.NoError(t, err)
		other, err := NewEncryptedEncoder(PlainEncoder{}, otherKey)
		require.NoError(t, err)

		_, err = other.Decode(first)
		require.ErrorIs(t, err, ErrTamperedCursor)
	})

	t.Run("bad base64", func(t *testing.T) {
		_, err := enc.Decode("***")
		require.ErrorIs(t, err, ErrMalformedCursor)
	})
}

func Test_NewEncryptedEncoder_Config(t *testing.T) {
	_, err := NewEncryptedEncoder(PlainEncoder{}, []byte("short"))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewEncryptedEncoder(nil, make([]byte, EncryptionKeySize))
	require.ErrorIs(t, err, ErrInvalidConfig)

	key, err := GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key, EncryptionKeySize)
}
