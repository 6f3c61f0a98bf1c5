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

package bodyparser

import (
	"net/http"
)

// Default byte budgets per format.
const (
	// DefaultJSONLimit is the default structured-text body budget (1 MiB).
	DefaultJSONLimit = 1 << 20

	// DefaultTextLimit is the default plain-text body budget (1 MiB).
	DefaultTextLimit = 1 << 20

	// DefaultURLEncodedLimit is the default form-encoded body budget (1 MiB).
	DefaultURLEncodedLimit = 1 << 20

	// DefaultMultipartLimit is the default multipart body budget (10 MiB),
	// applied per file and cumulatively across the whole body.
	DefaultMultipartLimit = 10 << 20
)

// EmptyBodyPolicy selects what an empty or whitespace-only structured-text
// body decodes to.
type EmptyBodyPolicy int

const (
	// EmptyBodyUndefined yields no decoded value for an empty body.
	// This is the default policy.
	EmptyBodyUndefined EmptyBodyPolicy = iota

	// EmptyBodyObject yields an empty map for an empty body.
	EmptyBodyObject
)

// VerifyFunc is a post-decode verification hook. It receives the request
// and the exact raw body text and may veto the request by returning an
// error; the error message is truncated before it is surfaced as a 400.
type VerifyFunc func(r *http.Request, rawBody []byte) error

// ErrorHandler maps a decode failure to a response, replacing the built-in
// plain-text rendering.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, failure *Failure)

// JSONParser overrides the built-in structured-text parse. It receives the
// raw body bytes after the byte budget and nesting-depth checks have
// passed; the returned value is still scrubbed of denylisted keys.
type JSONParser func(data []byte) (any, error)

// CustomDecoder registers a decoder for an extended content-type family.
// Custom decoders are consulted before any built-in dispatch, in
// registration order.
type CustomDecoder struct {
	// Type is the content-type substring the decoder matches,
	// case-insensitively (e.g. "yaml", "application/x-msgpack").
	Type string

	// Limit is the byte budget for matched bodies. Zero means
	// [DefaultJSONLimit].
	Limit int64

	// Decode turns the bounded body bytes into a value. An error becomes
	// an [ErrInvalidSyntax] failure with a truncated message.
	Decode func(data []byte) (any, error)
}

// Events provides observability hooks without coupling the decode path to
// any logging or metrics stack.
type Events struct {
	// BodyDecoded is called after a body decodes successfully.
	BodyDecoded func(contentType string, size int)

	// DecodeFailed is called with the failure for any rejected body.
	DecodeFailed func(contentType string, err error)
}

// Option configures the parser.
type Option func(*config)

// config holds immutable parser configuration. It is constructed once by
// [New] and only ever read afterwards, so concurrent requests share it
// without synchronization.
type config struct {
	jsonLimit       int64
	textLimit       int64
	urlencodedLimit int64
	multipartLimit  int64
	strict          bool
	jsonTypes       []string
	jsonParser      JSONParser
	onError         ErrorHandler
	verify          VerifyFunc
	parseNested     bool
	emptyBody       EmptyBodyPolicy
	custom          []CustomDecoder
	events          Events
}

// defaultConfig returns the default parser configuration.
func defaultConfig() *config {
	return &config{
		jsonLimit:       DefaultJSONLimit,
		textLimit:       DefaultTextLimit,
		urlencodedLimit: DefaultURLEncodedLimit,
		multipartLimit:  DefaultMultipartLimit,
		jsonTypes:       []string{"json"},
		parseNested:     true,
		emptyBody:       EmptyBodyUndefined,
	}
}

// applyOptions creates a config with defaults and applies the given options.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// mustParseLimit converts a size spec or panics. Limit options accept
// configuration values, not request input; an invalid spec is a programmer
// error and is fatal to parser construction.
func mustParseLimit(value any) int64 {
	limit, err := ParseLimit(value)
	if err != nil {
		panic("bodyparser: " + err.Error())
	}

	return limit
}

// WithLimit sets the byte budget for every format at once. The value may
// be a numeric byte count or a size string such as "512kb" or "10mb", and
// is clamped to [MaxLimit]. Panics on an invalid spec.
//
// Example:
//
//	bodyparser.New(bodyparser.WithLimit("2mb"))
func WithLimit(value any) Option {
	limit := mustParseLimit(value)

	return func(cfg *config) {
		cfg.jsonLimit = limit
		cfg.textLimit = limit
		cfg.urlencodedLimit = limit
		cfg.multipartLimit = limit
	}
}

// WithJSONLimit sets the structured-text body budget.
func WithJSONLimit(value any) Option {
	limit := mustParseLimit(value)

	return func(cfg *config) {
		cfg.jsonLimit = limit
	}
}

// WithTextLimit sets the plain-text body budget.
func WithTextLimit(value any) Option {
	limit := mustParseLimit(value)

	return func(cfg *config) {
		cfg.textLimit = limit
	}
}

// WithURLEncodedLimit sets the form-encoded body budget.
func WithURLEncodedLimit(value any) Option {
	limit := mustParseLimit(value)

	return func(cfg *config) {
		cfg.urlencodedLimit = limit
	}
}

// WithMultipartLimit sets the multipart body budget, applied per file and
// cumulatively.
func WithMultipartLimit(value any) Option {
	limit := mustParseLimit(value)

	return func(cfg *config) {
		cfg.multipartLimit = limit
	}
}

// WithStrict controls strict structured-text mode. When enabled, a
// top-level value that is not an object or array is rejected with 400.
// Default: disabled.
func WithStrict(strict bool) Option {
	return func(cfg *config) {
		cfg.strict = strict
	}
}

// WithJSONTypes replaces the content-type substrings treated as
// structured text. Default: "json", which covers application/json and
// every +json suffix type.
//
// Example:
//
//	bodyparser.New(bodyparser.WithJSONTypes("application/json", "+json"))
func WithJSONTypes(types ...string) Option {
	return func(cfg *config) {
		cfg.jsonTypes = types
	}
}

// WithJSONParser overrides the built-in structured-text parse function.
func WithJSONParser(parser JSONParser) Option {
	return func(cfg *config) {
		cfg.jsonParser = parser
	}
}

// WithErrorHandler sets a custom failure-to-response mapper.
//
// Example:
//
//	bodyparser.New(bodyparser.WithErrorHandler(
//	    func(w http.ResponseWriter, r *http.Request, failure *bodyparser.Failure) {
//	        http.Error(w, `{"error":"bad body"}`, failure.Status)
//	    },
//	))
func WithErrorHandler(handler ErrorHandler) Option {
	return func(cfg *config) {
		cfg.onError = handler
	}
}

// WithVerify sets a post-decode verification hook. The hook runs after a
// successful decode, with the captured raw body text; returning an error
// rejects the request with 400.
func WithVerify(verify VerifyFunc) Option {
	return func(cfg *config) {
		cfg.verify = verify
	}
}

// WithNestedObjects enables or disables bracket-path nesting for
// form-encoded bodies ("user[address][city]=NYC"). When disabled, keys
// are assigned flat with same-key promotion to a sequence. Default:
// enabled. Denylisted keys are dropped either way.
func WithNestedObjects(enabled bool) Option {
	return func(cfg *config) {
		cfg.parseNested = enabled
	}
}

// WithEmptyJSONBody selects the decode result for empty structured-text
// bodies. Default: [EmptyBodyUndefined].
func WithEmptyJSONBody(policy EmptyBodyPolicy) Option {
	return func(cfg *config) {
		cfg.emptyBody = policy
	}
}

// WithCustomDecoder registers a decoder for an extended content-type
// family. Custom decoders are matched before the built-in formats, in
// registration order.
//
// Example:
//
//	bodyparser.New(bodyparser.WithCustomDecoder(yaml.Decoder()))
func WithCustomDecoder(decoder CustomDecoder) Option {
	return func(cfg *config) {
		cfg.custom = append(cfg.custom, decoder)
	}
}

// WithEvents sets observability hooks.
func WithEvents(events Events) Option {
	return func(cfg *config) {
		cfg.events = events
	}
}
