// Copyright 2025 The Bodyparser Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package toml provides a TOML body decoder for the bodyparser package,
// using github.com/BurntSushi/toml for parsing.
//
// Example:
//
//	parser := bodyparser.New(
//	    bodyparser.WithCustomDecoder(toml.Decoder()),
//	)
package toml

import (
	"github.com/BurntSushi/toml"

	bodyparser "github.com/BackendStack21/0http-bun-sub001"
)

// Option configures the TOML decoder.
type Option func(*config)

// config holds TOML-specific decoder configuration.
type config struct {
	contentType string
	limit       int64
}

// WithType overrides the content-type substring the decoder matches.
// Default: "toml".
func WithType(contentType string) Option {
	return func(cfg *config) {
		cfg.contentType = contentType
	}
}

// WithLimit sets the byte budget for TOML bodies.
func WithLimit(value any) Option {
	return func(cfg *config) {
		limit, err := bodyparser.ParseLimit(value)
		if err != nil {
			panic("toml: " + err.Error())
		}
		cfg.limit = limit
	}
}

// Decoder returns a TOML decoder ready for
// [bodyparser.WithCustomDecoder]. TOML documents always decode to a map;
// denylisted keys are scrubbed by the parser before the value is attached
// to the request.
func Decoder(opts ...Option) bodyparser.CustomDecoder {
	cfg := &config{contentType: "toml"}
	for _, opt := range opts {
		opt(cfg)
	}

	return bodyparser.CustomDecoder{
		Type:  cfg.contentType,
		Limit: cfg.limit,
		Decode: func(data []byte) (any, error) {
			var value map[string]any
			if err := toml.Unmarshal(data, &value); err != nil {
				return nil, err
			}

			return value, nil
		},
	}
}
