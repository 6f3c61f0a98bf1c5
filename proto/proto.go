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

// Package proto provides a Protocol Buffers body decoder for the
// bodyparser package, using google.golang.org/protobuf for parsing.
//
// Unlike the self-describing formats, protobuf needs the target message
// type, so the decoder takes a message factory:
//
//	parser := bodyparser.New(
//	    bodyparser.WithCustomDecoder(proto.Decoder(func() *pb.CreateOrderRequest {
//	        return &pb.CreateOrderRequest{}
//	    })),
//	)
package proto

import (
	"google.golang.org/protobuf/proto"

	bodyparser "github.com/BackendStack21/0http-bun-sub001"
)

// Option configures the protobuf decoder.
type Option func(*config)

// config holds protobuf-specific decoder configuration.
type config struct {
	contentType string
	limit       int64
}

// WithType overrides the content-type substring the decoder matches.
// Default: "protobuf", which covers application/protobuf and
// application/x-protobuf.
func WithType(contentType string) Option {
	return func(cfg *config) {
		cfg.contentType = contentType
	}
}

// WithLimit sets the byte budget for protobuf bodies.
func WithLimit(value any) Option {
	return func(cfg *config) {
		limit, err := bodyparser.ParseLimit(value)
		if err != nil {
			panic("proto: " + err.Error())
		}
		cfg.limit = limit
	}
}

// Decoder returns a protobuf decoder ready for
// [bodyparser.WithCustomDecoder]. newMessage builds a fresh message for
// each request; the decoded message is attached to the request as the
// body value.
func Decoder[T proto.Message](newMessage func() T, opts ...Option) bodyparser.CustomDecoder {
	cfg := &config{contentType: "protobuf"}
	for _, opt := range opts {
		opt(cfg)
	}

	return bodyparser.CustomDecoder{
		Type:  cfg.contentType,
		Limit: cfg.limit,
		Decode: func(data []byte) (any, error) {
			message := newMessage()
			if err := proto.Unmarshal(data, message); err != nil {
				return nil, err
			}

			return message, nil
		},
	}
}
