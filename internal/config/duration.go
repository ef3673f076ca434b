// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const second = time.Second

// Duration is a time.Duration that (un)marshals from the simple YAML
// grammar "integer + s|m|h|ms", rather than Go's own duration syntax, so
// config files stay easy to hand-edit.
type Duration time.Duration

// String renders the duration back in the same grammar it parses.
func (d Duration) String() string {
	td := time.Duration(d)
	switch {
	case td%time.Hour == 0:
		return fmt.Sprintf("%dh", td/time.Hour)
	case td%time.Minute == 0:
		return fmt.Sprintf("%dm", td/time.Minute)
	case td%time.Second == 0:
		return fmt.Sprintf("%ds", td/time.Second)
	default:
		return fmt.Sprintf("%dms", td/time.Millisecond)
	}
}

// ParseDuration parses text per the "integer + s|m|h|ms" grammar.
func ParseDuration(text string) (Duration, error) {
	text = strings.TrimSpace(text)
	for _, unit := range []struct {
		suffix string
		scale  time.Duration
	}{
		{"ms", time.Millisecond},
		{"s", time.Second},
		{"m", time.Minute},
		{"h", time.Hour},
	} {
		if strings.HasSuffix(text, unit.suffix) {
			numeric := strings.TrimSuffix(text, unit.suffix)
			n, err := strconv.ParseInt(numeric, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", text, err)
			}
			return Duration(time.Duration(n) * unit.scale), nil
		}
	}
	return 0, fmt.Errorf("invalid duration %q: expected integer followed by ms, s, m, or h", text)
}

// UnmarshalYAML implements yaml.Unmarshaler so Config fields of type
// Duration accept the "10s" / "500ms" / "5m" grammar directly.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := ParseDuration(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting the same grammar.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
