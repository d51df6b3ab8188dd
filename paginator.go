package pagekit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// TotalMode selects whether and when paginators count the dataset.
type TotalMode int

const (
	// TotalNone runs no count query, the total stays unknown.
	TotalNone TotalMode = iota
	// TotalEager counts while paginating.
	TotalEager
	// TotalLazy counts on the first Total call of the result. The count runs
	// with the context given to Paginate, so read the total before that
	// context is canceled.
	TotalLazy
)

// Option configures a paginator.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	totalMode TotalMode
	encoder   Encoder
}

func defaultOptions() options {
	return options{
		logger:    zap.NewNop(),
		totalMode: TotalNone,
		encoder:   PlainEncoder{},
	}
}

// WithLogger sets the logger for debug output. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTotalMode sets the total counting mode, TotalNone by default.
func WithTotalMode(mode TotalMode) Option {
	return func(o *options) {
		o.totalMode = mode
	}
}

// WithEncoder sets the cursor token encoder, PlainEncoder by default. Only
// cursor paginators use it.
func WithEncoder(encoder Encoder) Option {
	return func(o *options) {
		if encoder != nil {
			o.encoder = encoder
		}
	}
}

func newOptions(cfg Config, opts []Option) (options, error) {
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.totalMode < TotalNone || o.totalMode > TotalLazy {
		return options{}, fmt.Errorf("%w: unknown total mode %d", ErrInvalidConfig, o.totalMode)
	}

	return o, nil
}

// resolveTotal counts q according to mode. q must be a query the caller will
// not modify afterwards.
func resolveTotal[T any](ctx context.Context, q Query[T], mode TotalMode) (*Total, error) {
	switch mode {
	case TotalEager:
		total, err := q.Count(ctx)
		if err != nil {
			return nil, err
		}

		return KnownTotal(total), nil
	case TotalLazy:
		return LazyTotal(func() (int64, error) {
			return q.Count(ctx)
		}), nil
	default:
		return nil, nil
	}
}

// intParam reads an integer query parameter. ok is false when the parameter
// is missing or blank.
func intParam(r RequestReader, name string) (value int, ok bool, err error) {
	raw := strings.TrimSpace(r.QueryParams().Get(name))
	if raw == "" {
		return 0, false, nil
	}

	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: parameter '%s' value '%s' is not an integer", ErrMalformedRequest, name, raw)
	}

	return value, true, nil
}

func perPageParam(r RequestReader, cfg Config) (int, error) {
	return ResolvePerPage(r.QueryParams().Get(cfg.PerPageParam), cfg.DefaultPerPage, cfg.MaxPerPage)
}
