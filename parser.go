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
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler; the wrapped handler is the
// continuation that runs once the body has been decoded and verified.
type Middleware func(next http.Handler) http.Handler

// format identifies one built-in decoder.
type format int

const (
	formatNone format = iota
	formatJSON
	formatURLEncoded
	formatMultipart
	formatText
)

// New returns a middleware that decodes the request body by content type
// and attaches the result to the request. Handlers read it back with
// [Decoded], [Files], and [RawBody].
//
// Dispatch order: registered custom decoders first, then the configured
// structured-text type families, application/x-www-form-urlencoded,
// multipart/form-data, and any text/* type. Requests without a body, or
// with an unmatched content type, pass through with no decoded value.
//
// Example:
//
//	parser := bodyparser.New(
//	    bodyparser.WithJSONLimit("1mb"),
//	    bodyparser.WithStrict(true),
//	)
//	http.Handle("/api", parser(apiHandler))
//
// Every failure is rendered as a plain-text response with a truncated
// message: 413 for size violations, 400 for everything else.
func New(opts ...Option) Middleware {
	cfg := applyOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			serveDecoded(w, r, next, cfg, formatNone)
		})
	}
}

// JSON returns a middleware that decodes only structured-text bodies.
// Requests with any other content type pass through untouched.
func JSON(opts ...Option) Middleware {
	return formatOnly(formatJSON, opts)
}

// Text returns a middleware that decodes only text/* bodies.
func Text(opts ...Option) Middleware {
	return formatOnly(formatText, opts)
}

// URLEncoded returns a middleware that decodes only form-encoded bodies.
func URLEncoded(opts ...Option) Middleware {
	return formatOnly(formatURLEncoded, opts)
}

// Multipart returns a middleware that decodes only multipart/form-data
// bodies.
func Multipart(opts ...Option) Middleware {
	return formatOnly(formatMultipart, opts)
}

// formatOnly builds a single-format middleware.
func formatOnly(only format, opts []Option) Middleware {
	cfg := applyOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			serveDecoded(w, r, next, cfg, only)
		})
	}
}

// serveDecoded runs the decode state machine and either invokes the
// continuation or short-circuits with an error response.
func serveDecoded(w http.ResponseWriter, r *http.Request, next http.Handler, cfg *config, only format) {
	decoded, failure := decodeRequest(r, cfg, only)
	contentType := r.Header.Get("Content-Type")

	if failure != nil {
		if cfg.events.DecodeFailed != nil {
			cfg.events.DecodeFailed(contentType, failure)
		}
		respondFailure(w, r, cfg, failure)

		return
	}

	r = decoded

	// Verification runs only when something was decoded; an undefined
	// body has nothing to verify.
	if cfg.verify != nil && Decoded(r) != nil {
		if err := cfg.verify(r, RawBody(r)); err != nil {
			failure := badRequest(ErrVerificationFailed, err.Error())
			if cfg.events.DecodeFailed != nil {
				cfg.events.DecodeFailed(contentType, failure)
			}
			respondFailure(w, r, cfg, failure)

			return
		}
	}

	if cfg.events.BodyDecoded != nil && Decoded(r) != nil {
		cfg.events.BodyDecoded(contentType, len(RawBody(r)))
	}

	next.ServeHTTP(w, r)
}

// decodeRequest selects and applies a decoder. It returns the request,
// decorated with the decode results when a decoder ran, and any failure.
// Unexpected decoder faults are caught exactly once here and surfaced as
// a sanitized 400.
func decodeRequest(r *http.Request, cfg *config, only format) (req *http.Request, failure *Failure) {
	defer func() {
		if rec := recover(); rec != nil {
			req = r
			failure = badRequest(ErrDecoderFault, "failed to decode request body")
		}
	}()

	if !HasBody(r.Method) {
		return r, nil
	}

	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if contentType == "" {
		return r, nil
	}

	if only == formatNone {
		for _, custom := range cfg.custom {
			if custom.Type == "" || !strings.Contains(contentType, strings.ToLower(custom.Type)) {
				continue
			}

			return applyCustomDecoder(r, cfg, custom)
		}
	}

	selected := selectFormat(contentType, cfg)
	if only != formatNone && selected != only {
		return r, nil
	}

	switch selected {
	case formatJSON:
		raw, f := readWithBudget(r, cfg.jsonLimit)
		if f != nil {
			return r, f
		}
		value, f := decodeJSON(raw, cfg)
		if f != nil {
			return r, f
		}

		return withBody(r, &bodyCarrier{decoded: value, raw: raw}), nil

	case formatURLEncoded:
		raw, f := readWithBudget(r, cfg.urlencodedLimit)
		if f != nil {
			return r, f
		}
		value, f := decodeURLEncoded(raw, cfg)
		if f != nil {
			return r, f
		}

		return withBody(r, &bodyCarrier{decoded: value, raw: raw}), nil

	case formatMultipart:
		if f := checkContentLength(r, cfg.multipartLimit); f != nil {
			return r, f
		}
		fields, files, f := decodeMultipart(r, cfg)
		if f != nil {
			return r, f
		}

		return withBody(r, &bodyCarrier{decoded: fields, files: files}), nil

	case formatText:
		raw, f := readWithBudget(r, cfg.textLimit)
		if f != nil {
			return r, f
		}
		value, _ := decodeText(raw)

		return withBody(r, &bodyCarrier{decoded: value, raw: raw}), nil
	}

	return r, nil
}

// selectFormat maps a lowercased content type to a built-in decoder using
// ordered substring matching.
func selectFormat(contentType string, cfg *config) format {
	for _, jsonType := range cfg.jsonTypes {
		if strings.Contains(contentType, strings.ToLower(jsonType)) {
			return formatJSON
		}
	}

	switch {
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		return formatURLEncoded
	case strings.Contains(contentType, "multipart/form-data"):
		return formatMultipart
	case strings.Contains(contentType, "text/"):
		return formatText
	default:
		return formatNone
	}
}

// applyCustomDecoder runs a registered extension decoder: content-length
// precheck, bounded read, decode, denylist scrub.
func applyCustomDecoder(r *http.Request, cfg *config, custom CustomDecoder) (*http.Request, *Failure) {
	limit := custom.Limit
	if limit <= 0 {
		limit = cfg.jsonLimit
	}

	raw, failure := readWithBudget(r, limit)
	if failure != nil {
		return r, failure
	}

	value, err := custom.Decode(raw)
	if err != nil {
		return r, badRequest(ErrInvalidSyntax, fmt.Sprintf("invalid body: %v", err))
	}

	return withBody(r, &bodyCarrier{decoded: scrubValue(value), raw: raw}), nil
}

// readWithBudget applies the content-length precheck and the bounded read
// for one limit.
func readWithBudget(r *http.Request, limit int64) ([]byte, *Failure) {
	if failure := checkContentLength(r, limit); failure != nil {
		return nil, failure
	}

	raw, err := readBounded(r.Body, limit)
	if err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			return nil, payloadTooLarge(limit)
		}

		return nil, badRequest(ErrBodyRead, "failed to read request body")
	}

	return raw, nil
}

// respondFailure renders a failure through the configured error handler,
// or as plain text with the truncated message.
func respondFailure(w http.ResponseWriter, r *http.Request, cfg *config, failure *Failure) {
	if cfg.onError != nil {
		cfg.onError(w, r, failure)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(failure.Status)
	_, _ = w.Write([]byte(failure.Message))
}
