// Package config fills `env`-tagged structs from the process environment.
// The storefront CLI and the mock commerce API both load their settings
// through it.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg, which must be a non-nil pointer to a struct, from the
// environment. Defaults come from `envDefault` tags. When several variables
// are malformed, all of them are named in the returned error.
func Load(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("parse config: target must be a pointer to a struct, got %T", cfg)
	}

	if err := env.Parse(cfg); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) && len(agg.Errors) > 1 {
			msgs := make([]string, 0, len(agg.Errors))
			for _, e := range agg.Errors {
				msgs = append(msgs, e.Error())
			}
			return fmt.Errorf("parse config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
