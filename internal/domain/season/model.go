package season

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Config describes where one season's document lives and whether it may be refreshed from the network.
type Config struct {
	Label      string `validate:"required,max=32"`
	SourceURL  string `validate:"omitempty,url"`
	CachePath  string `validate:"required"`
	AllowFetch bool
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return crerr.Wrapf(err, "season %q", c.Label)
	}
	return nil
}

// Refreshable reports whether a network fetch can ever be attempted for the season.
func (c Config) Refreshable() bool {
	return c.AllowFetch && strings.TrimSpace(c.SourceURL) != ""
}

// WithFetch returns a copy with the network policy applied for one run.
// Seasons that are not refreshable stay cache-only.
func (c Config) WithFetch(allowed bool) Config {
	c.AllowFetch = allowed && c.Refreshable()
	return c
}

// ValidateAll checks every config and rejects duplicate labels.
func ValidateAll(configs []Config) error {
	seen := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if _, dup := seen[cfg.Label]; dup {
			return crerr.Newf("duplicate season label %q", cfg.Label)
		}
		seen[cfg.Label] = struct{}{}
	}
	return nil
}

// WithFetchAll applies WithFetch to every config and returns a new slice.
func WithFetchAll(configs []Config, allowed bool) []Config {
	out := make([]Config, len(configs))
	for i, cfg := range configs {
		out[i] = cfg.WithFetch(allowed)
	}
	return out
}

// AnyRefreshable reports whether at least one season can be fetched from the network.
func AnyRefreshable(configs []Config) bool {
	for _, cfg := range configs {
		if cfg.Refreshable() {
			return true
		}
	}
	return false
}
