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

// Package msgpack provides a MessagePack body decoder for the bodyparser
// package, using github.com/vmihailenco/msgpack/v5 for parsing.
//
// Example:
//
//	parser := bodyparser.New(
//	    bodyparser.WithCustomDecoder(msgpack.Decoder()),
//	)
package msgpack

import (
	"github.com/vmihailenco/msgpack/v5"

	bodyparser "github.com/BackendStack21/0http-bun-sub001"
)

// Option configures the MessagePack decoder.
type Option func(*config)

// config holds MessagePack-specific decoder configuration.
type config struct {
	contentType string
	limit       int64
}

// WithType overrides the content-type substring the decoder matches.
// Default: "msgpack", which covers application/msgpack and
// application/x-msgpack.
func WithType(contentType string) Option {
	return func(cfg *config) {
		cfg.contentType = contentType
	}
}

// WithLimit sets the byte budget for MessagePack bodies.
func WithLimit(value any) Option {
	return func(cfg *config) {
		limit, err := bodyparser.ParseLimit(value)
		if err != nil {
			panic("msgpack: " + err.Error())
		}
		cfg.limit = limit
	}
}

// Decoder returns a MessagePack decoder ready for
// [bodyparser.WithCustomDecoder]. The decoded value is a generic nested
// map/sequence; denylisted keys are scrubbed by the parser before the
// value is attached to the request.
func Decoder(opts ...Option) bodyparser.CustomDecoder {
	cfg := &config{contentType: "msgpack"}
	for _, opt := range opts {
		opt(cfg)
	}

	return bodyparser.CustomDecoder{
		Type:  cfg.contentType,
		Limit: cfg.limit,
		Decode: func(data []byte) (any, error) {
			var value any
			if err := msgpack.Unmarshal(data, &value); err != nil {
				return nil, err
			}

			return value, nil
		},
	}
}
