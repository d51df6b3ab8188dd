package cursorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Alp4ka/pagekit"
)

// DefaultTimeout bounds each storage call made by Encoder.
const DefaultTimeout = 2 * time.Second

// Encoder is a pagekit.Encoder whose tokens are storage names. Encode and
// Decode carry no context, so every storage call runs under its own timeout.
type Encoder struct {
	storage pagekit.CursorStorage
	timeout time.Duration
}

// NewEncoder returns an encoder over storage. A non-positive timeout means
// DefaultTimeout.
func NewEncoder(storage pagekit.CursorStorage, timeout time.Duration) *Encoder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Encoder{storage: storage, timeout: timeout}
}

func (e *Encoder) Encode(position pagekit.Position) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	return e.storage.Store(ctx, position)
}

// Decode fails with pagekit.ErrMalformedCursor for unknown or expired names.
func (e *Encoder) Decode(token string) (pagekit.Position, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	position, ok, err := e.storage.Retrieve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown cursor '%s'", pagekit.ErrMalformedCursor, token)
	}

	return position, nil
}

var _ pagekit.Encoder = (*Encoder)(nil)
