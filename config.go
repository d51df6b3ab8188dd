package pagekit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the HTTP parameter names and page size policy shared by every
// paginator.
type Config struct {
	PageParam    string `mapstructure:"page_param"     validate:"required"`
	PerPageParam string `mapstructure:"per_page_param" validate:"required"`
	CursorParam  string `mapstructure:"cursor_param"   validate:"required"`
	RangeParam   string `mapstructure:"range_param"    validate:"required"`
	OffsetParam  string `mapstructure:"offset_param"   validate:"required"`
	LimitParam   string `mapstructure:"limit_param"    validate:"required"`
	// RangeUnit is the unit of Range / Content-Range / Accept-Ranges headers.
	RangeUnit string `mapstructure:"range_unit" validate:"required,alphanum"`
	// DefaultPerPage is used when a request does not ask for a page size, and
	// always when MaxPerPage is MaxPerPageLocked.
	DefaultPerPage int `mapstructure:"default_per_page" validate:"gt=0"`
	// MaxPerPage caps requested page sizes. Zero locks the page size to
	// DefaultPerPage.
	MaxPerPage int `mapstructure:"max_per_page" validate:"eq=0|gtefield=DefaultPerPage"`
}

// DefaultConfig returns the stock parameter names with a locked page size of
// DefaultPerPage.
func DefaultConfig() Config {
	return Config{
		PageParam:      "page",
		PerPageParam:   "per_page",
		CursorParam:    "cursor",
		RangeParam:     "range",
		OffsetParam:    "offset",
		LimitParam:     "limit",
		RangeUnit:      "items",
		DefaultPerPage: DefaultPerPage,
		MaxPerPage:     MaxPerPageLocked,
	}
}

var _validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	err := _validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// SpanLimit returns the widest page a request may ask for.
func (c Config) SpanLimit() int {
	return SpanLimit(c.DefaultPerPage, c.MaxPerPage)
}

// ConfigFromViper reads a Config from the given viper key, falling back to
// DefaultConfig for missing fields:
//
//	pagination:
//	  default_per_page: 20
//	  max_per_page: 100
//	  cursor_param: after
func ConfigFromViper(v *viper.Viper, key string) (Config, error) {
	cfg := DefaultConfig()
	if v == nil {
		return cfg, nil
	}

	if key != "" && !v.IsSet(key) {
		return cfg, cfg.Validate()
	}

	var err error
	if key == "" {
		err = v.Unmarshal(&cfg)
	} else {
		err = v.UnmarshalKey(key, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
