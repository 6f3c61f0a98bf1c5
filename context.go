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
	"context"
	"net/http"
)

// carrierKey is the unexported context key for decoded body state. Keeping
// the state behind an unexported key means it is never reachable through
// generic request traversal or serialization.
type carrierKey struct{}

// bodyCarrier holds the per-request decode results. All fields are scoped
// to one request and discarded when it completes.
type bodyCarrier struct {
	decoded any
	files   FileMap
	raw     []byte
}

// withBody attaches decode results to the request.
func withBody(r *http.Request, carrier *bodyCarrier) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), carrierKey{}, carrier))
}

// Decoded returns the decoded body attached to the request, or nil when no
// body was decoded (no body sent, unsupported content type, or a method
// that carries no body).
//
// The value is a string for text bodies, or a nested map/sequence for
// structured-text, form-encoded, and multipart bodies.
func Decoded(r *http.Request) any {
	if carrier, ok := r.Context().Value(carrierKey{}).(*bodyCarrier); ok {
		return carrier.decoded
	}

	return nil
}

// Files returns the uploaded files from a multipart body, or nil for any
// other body. Entries are *FileField, or []*FileField for repeated field
// names.
func Files(r *http.Request) FileMap {
	if carrier, ok := r.Context().Value(carrierKey{}).(*bodyCarrier); ok {
		return carrier.files
	}

	return nil
}

// RawBody returns the exact body text captured for the verification hook,
// or nil when no text body was decoded.
func RawBody(r *http.Request) []byte {
	if carrier, ok := r.Context().Value(carrierKey{}).(*bodyCarrier); ok {
		return carrier.raw
	}

	return nil
}
